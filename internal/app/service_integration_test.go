package service_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/okian/ingredex/internal/adapters/extractor"
	"github.com/okian/ingredex/internal/adapters/repository"
	service "github.com/okian/ingredex/internal/app"
	"github.com/okian/ingredex/internal/domain/catalog"
	. "github.com/smartystreets/goconvey/convey"
)

func TestServiceIntegration(t *testing.T) {
	Convey("Given a service backed by a SQLite catalog", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		store, err := repository.OpenSQLite(ctx, filepath.Join(t.TempDir(), "catalog.db"))
		So(err, ShouldBeNil)
		defer store.Close()
		So(store.ReplaceAll(ctx, catalog.Builtin()), ShouldBeNil)

		ex := fakeExtractor{names: []string{"INGREDIENTS", "cane sugar", "Colour (E102)", "HFCS", "Water"}}
		svc := service.New(
			service.WithSource(store),
			service.WithExtractor(extractor.WithTimeout(ex, time.Second, nil)),
			service.WithLookupConcurrency(3),
		)
		defer svc.Stop()

		Convey("When starting the service", func() {
			err := svc.Start(ctx)

			Convey("Then the stored catalog is used", func() {
				So(err, ShouldBeNil)
				So(svc.GetStats()["catalogRecords"], ShouldEqual, 8)
			})
		})

		Convey("When many scans run at once", func() {
			So(svc.Start(ctx), ShouldBeNil)

			const scans = 16
			var wg sync.WaitGroup
			results := make([][]string, scans)
			errs := make([]error, scans)
			for i := 0; i < scans; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					res, err := svc.Scan(ctx, extractor.Image{Path: fmt.Sprintf("label-%d.png", i)}, nil)
					errs[i] = err
					for _, si := range res.Ingredients {
						results[i] = append(results[i], si.Record.Name)
					}
				}()
			}
			wg.Wait()

			Convey("Then every scan sees the same ordered matches", func() {
				for i := 0; i < scans; i++ {
					So(errs[i], ShouldBeNil)
					So(results[i], ShouldResemble, []string{"Sugar", "Tartrazine", "High Fructose Corn Syrup"})
				}
				So(svc.GetStats()["scans"], ShouldEqual, int64(scans))
			})
		})
	})
}
