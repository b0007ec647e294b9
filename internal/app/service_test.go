package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/ingredex/internal/adapters/extractor"
	service "github.com/okian/ingredex/internal/app"
	"github.com/okian/ingredex/internal/domain/model"
	"github.com/okian/ingredex/internal/domain/resolver"
	"github.com/okian/ingredex/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

type fakeExtractor struct {
	names []string
	err   error
}

func (f fakeExtractor) Name() string { return "fake" }

func (f fakeExtractor) Extract(context.Context, extractor.Image) ([]string, error) {
	return f.names, f.err
}

func startedService(t *testing.T, opts ...service.Option) *service.Service {
	t.Helper()
	svc := service.New(opts...)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := svc.Start(ctx); err != nil {
		t.Fatal(err)
	}
	return svc
}

func TestService_Start(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New()
		defer svc.Stop()

		Convey("When it is used before starting", func() {
			_, err := svc.Lookup(context.Background(), "Sugar", nil)
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})

		Convey("When starting the service", func() {
			err := svc.Start(context.Background())

			Convey("Then the built-in catalog is loaded", func() {
				So(err, ShouldBeNil)
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
				So(stats["catalogRecords"], ShouldEqual, 8)
				So(stats["extractor"], ShouldEqual, "null")
			})

			Convey("And stopping marks it stopped", func() {
				svc.Stop()
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})
}

func TestService_Lookup(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := startedService(t)
		defer svc.Stop()
		ctx := context.Background()

		Convey("When looking up by alias without context", func() {
			si, err := svc.Lookup(ctx, "NutraSweet", nil)

			Convey("Then the base score is returned with an educational summary", func() {
				So(err, ShouldBeNil)
				So(si.Record.Name, ShouldEqual, "Aspartame")
				So(si.Score, ShouldEqual, 6)
				So(si.Education, ShouldStartWith, "About Aspartame: This ingredient is synthetic.")
			})
		})

		Convey("When looking up for someone managing diabetes", func() {
			rc := &model.RequestContext{HealthConditions: []model.Condition{model.ConditionDiabetes}}
			sugar, err := svc.Lookup(ctx, "sugar", rc)
			So(err, ShouldBeNil)
			So(sugar.Score, ShouldEqual, 3)

			asp, err := svc.Lookup(ctx, "E951", rc)
			So(err, ShouldBeNil)
			So(asp.Score, ShouldEqual, 6)
		})

		Convey("When the name is unknown", func() {
			_, err := svc.Lookup(ctx, "Unknown Thing", nil)
			So(errors.Is(err, resolver.ErrNotFound), ShouldBeTrue)
		})

		Convey("When asking for matches", func() {
			names, err := svc.Matches(ctx, "corn")
			So(err, ShouldBeNil)
			So(names, ShouldResemble, []string{"High Fructose Corn Syrup"})
		})

		Convey("When listing ingredients", func() {
			recs, err := svc.Ingredients(ctx)
			So(err, ShouldBeNil)
			So(len(recs), ShouldEqual, 8)
		})
	})
}

func TestService_Scan(t *testing.T) {
	Convey("Given a service whose extractor reads a known label", t, func() {
		ex := fakeExtractor{names: []string{"Sugar", "Unknown Thing", "E621"}}
		svc := startedService(t, service.WithExtractor(ex), service.WithLookupConcurrency(2))
		defer svc.Stop()

		Convey("When the label is scanned", func() {
			res, err := svc.Scan(context.Background(), extractor.Image{}, nil)

			Convey("Then unknown names are dropped but kept in the original text", func() {
				So(err, ShouldBeNil)
				So(res.OriginalText, ShouldResemble, []string{"Sugar", "Unknown Thing", "E621"})
				So(len(res.Ingredients), ShouldEqual, 2)
				So(res.Ingredients[0].Record.Name, ShouldEqual, "Sugar")
				So(res.Ingredients[1].Record.Name, ShouldEqual, "Monosodium Glutamate")
			})
		})
	})

	Convey("Given a label that names one ingredient several ways", t, func() {
		ex := fakeExtractor{names: []string{"Aspartame", "E951", "nutrasweet", "Sugar"}}
		svc := startedService(t, service.WithExtractor(ex))
		defer svc.Stop()

		res, err := svc.Scan(context.Background(), extractor.Image{}, nil)
		So(err, ShouldBeNil)
		So(len(res.Ingredients), ShouldEqual, 2)
		So(res.Ingredients[0].Record.Name, ShouldEqual, "Aspartame")
		So(res.Ingredients[1].Record.Name, ShouldEqual, "Sugar")
	})

	Convey("Given a scan with a request context", t, func() {
		ex := fakeExtractor{names: []string{"Sugar"}}
		svc := startedService(t, service.WithExtractor(ex))
		defer svc.Stop()

		res, err := svc.Scan(context.Background(), extractor.Image{}, &model.RequestContext{AgeGroup: model.AgeChild})
		So(err, ShouldBeNil)
		So(res.Ingredients[0].Score, ShouldEqual, 2)
	})

	Convey("Given an extractor that fails", t, func() {
		ex := fakeExtractor{err: errors.New("vision api down")}
		svc := startedService(t, service.WithExtractor(ex))
		defer svc.Stop()

		_, err := svc.Scan(context.Background(), extractor.Image{}, nil)
		So(errors.Is(err, extractor.ErrExtractionFailed), ShouldBeTrue)
	})

	Convey("Given an extractor that finds nothing", t, func() {
		svc := startedService(t, service.WithExtractor(fakeExtractor{}))
		defer svc.Stop()

		res, err := svc.Scan(context.Background(), extractor.Image{}, nil)
		So(err, ShouldBeNil)
		So(res.OriginalText, ShouldBeEmpty)
		So(res.Ingredients, ShouldBeEmpty)
	})
}
