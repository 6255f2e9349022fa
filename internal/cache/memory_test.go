package cache_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/sitecheck/internal/cache"
)

var _ = Describe("MemoryStore", func() {
	var (
		ctx   context.Context
		now   time.Time
		store *cache.MemoryStore
	)

	BeforeEach(func() {
		ctx = context.Background()
		now = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
		store = cache.NewMemoryStore(cache.WithClock(func() time.Time { return now }))
	})

	It("misses on an unknown key", func() {
		_, err := store.Get(ctx, "https://example.com/")
		Expect(err).To(MatchError(cache.ErrMiss))
	})

	It("returns what was stored before the ttl", func() {
		Expect(store.Set(ctx, "k", []byte("v"), time.Minute)).To(Succeed())
		now = now.Add(59 * time.Second)

		raw, err := store.Get(ctx, "k")
		Expect(err).NotTo(HaveOccurred())
		Expect(string(raw)).To(Equal("v"))
	})

	It("expires entries at the ttl", func() {
		Expect(store.Set(ctx, "k", []byte("v"), time.Minute)).To(Succeed())
		now = now.Add(time.Minute)

		_, err := store.Get(ctx, "k")
		Expect(err).To(MatchError(cache.ErrMiss))
		Expect(store.Len()).To(BeZero())
	})

	It("overwrites unconditionally", func() {
		Expect(store.Set(ctx, "k", []byte("first"), time.Minute)).To(Succeed())
		Expect(store.Set(ctx, "k", []byte("second"), time.Minute)).To(Succeed())

		raw, err := store.Get(ctx, "k")
		Expect(err).NotTo(HaveOccurred())
		Expect(string(raw)).To(Equal("second"))
	})

	It("isolates stored bytes from callers", func() {
		value := []byte("abc")
		Expect(store.Set(ctx, "k", value, time.Minute)).To(Succeed())
		value[0] = 'X'

		raw, _ := store.Get(ctx, "k")
		raw[1] = 'Y'

		again, _ := store.Get(ctx, "k")
		Expect(string(again)).To(Equal("abc"))
	})

	It("sweeps expired entries as it grows", func() {
		for i := 0; i < 1000; i++ {
			Expect(store.Set(ctx, fmt.Sprintf("old-%d", i), []byte("x"), time.Second)).To(Succeed())
		}
		now = now.Add(2 * time.Second)
		for i := 0; i < 100; i++ {
			Expect(store.Set(ctx, fmt.Sprintf("new-%d", i), []byte("x"), time.Minute)).To(Succeed())
		}
		Expect(store.Len()).To(BeNumerically("<", 1000))
	})

	It("is safe for concurrent use", func() {
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(2)
			go func(i int) {
				defer wg.Done()
				_ = store.Set(ctx, fmt.Sprintf("k%d", i%5), []byte("v"), time.Minute)
			}(i)
			go func(i int) {
				defer wg.Done()
				_, _ = store.Get(ctx, fmt.Sprintf("k%d", i%5))
			}(i)
		}
		wg.Wait()
	})
})
