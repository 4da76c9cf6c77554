package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fairdesk/fairdesk/internal/adapters/cache"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRedisStatsCache(t *testing.T) {
	Convey("Given a Redis stats cache", t, func() {
		mr := miniredis.RunT(t)
		ctx := context.Background()
		c, err := cache.NewRedisStatsCache(ctx, cache.RedisConfig{Addr: mr.Addr()})
		So(err, ShouldBeNil)
		defer c.Close()

		key := cache.Key("fairdesk", "dashboard", "u1")

		Convey("When the key was never set", func() {
			_, err := c.Get(ctx, key)

			Convey("Then a miss is reported", func() {
				So(errors.Is(err, cache.ErrCacheMiss), ShouldBeTrue)
			})
		})

		Convey("When a value is stored", func() {
			So(c.Set(ctx, key, []byte(`{"a":1}`), 30*time.Second), ShouldBeNil)

			Convey("Then it can be read back", func() {
				got, err := c.Get(ctx, key)
				So(err, ShouldBeNil)
				So(string(got), ShouldEqual, `{"a":1}`)
			})

			Convey("Then it expires after the TTL", func() {
				mr.FastForward(31 * time.Second)
				_, err := c.Get(ctx, key)
				So(errors.Is(err, cache.ErrCacheMiss), ShouldBeTrue)
			})
		})
	})

	Convey("Given no Redis server", t, func() {
		_, err := cache.NewRedisStatsCache(context.Background(), cache.RedisConfig{Addr: "127.0.0.1:1"})

		Convey("Then construction fails", func() {
			So(err, ShouldNotBeNil)
		})
	})
}

func TestKey(t *testing.T) {
	Convey("Key joins prefix, report and user", t, func() {
		So(cache.Key("fd", "location_report", "u9"), ShouldEqual, "fd:location_report:u9")
	})
}
