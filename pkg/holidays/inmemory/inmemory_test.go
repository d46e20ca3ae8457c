package inmemory_test

import (
	. "github.com/onsi/ginkgo/v2"

	"github.com/papercomputeco/trickle/pkg/holidays"
	"github.com/papercomputeco/trickle/pkg/holidays/holidaystest"
	"github.com/papercomputeco/trickle/pkg/holidays/inmemory"
)

var _ holidays.Store = (*inmemory.Store)(nil)

var _ = Describe("Store", func() {
	holidaystest.StoreSpecs(func() holidays.Store {
		return inmemory.NewStore()
	})
})
