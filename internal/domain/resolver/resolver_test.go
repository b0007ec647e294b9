package resolver_test

import (
	"errors"
	"testing"

	catalog "github.com/okian/ingredex/internal/domain/catalog"
	resolver "github.com/okian/ingredex/internal/domain/resolver"
	. "github.com/smartystreets/goconvey/convey"
)

func newResolver() *resolver.Resolver {
	cat, err := catalog.New(catalog.Builtin())
	if err != nil {
		panic(err)
	}
	return resolver.New(cat)
}

func TestResolve(t *testing.T) {
	Convey("Given a resolver over the built-in catalog", t, func() {
		r := newResolver()

		Convey("When the query differs only in case and whitespace", func() {
			for _, q := range []string{" aspartame ", "ASPARTAME", "Aspartame"} {
				rec, err := r.Resolve(q)
				So(err, ShouldBeNil)
				So(rec.Name, ShouldEqual, "Aspartame")
			}
		})

		Convey("When the query is an alias or E-number", func() {
			rec, err := r.Resolve("NutraSweet")
			So(err, ShouldBeNil)
			So(rec.Name, ShouldEqual, "Aspartame")

			rec, err = r.Resolve("E951")
			So(err, ShouldBeNil)
			So(rec.Name, ShouldEqual, "Aspartame")

			rec, err = r.Resolve("e102")
			So(err, ShouldBeNil)
			So(rec.Name, ShouldEqual, "Tartrazine")
		})

		Convey("When the query is a scientific name", func() {
			rec, err := r.Resolve("1,3,7-trimethylxanthine")
			So(err, ShouldBeNil)
			So(rec.Name, ShouldEqual, "Caffeine")
		})

		Convey("When the query uses full-width characters", func() {
			rec, err := r.Resolve("ＭＳＧ")
			So(err, ShouldBeNil)
			So(rec.Name, ShouldEqual, "Monosodium Glutamate")
		})

		Convey("When two records share a key", func() {
			rec, err := r.Resolve("E967")

			Convey("Then the earlier record in the catalog wins", func() {
				So(err, ShouldBeNil)
				So(rec.Name, ShouldEqual, "High Fructose Corn Syrup")
			})
		})

		Convey("When the query only matches by containment", func() {
			_, err := r.Resolve("corn")

			Convey("Then resolve does not fall back", func() {
				So(errors.Is(err, resolver.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When the query is an exact name that is also a substring elsewhere", func() {
			rec, err := r.Resolve("sugar")
			So(err, ShouldBeNil)
			So(rec.Name, ShouldEqual, "Sugar")
		})

		Convey("When the query is unknown or blank", func() {
			_, err := r.Resolve("Unknown Thing")
			So(errors.Is(err, resolver.ErrNotFound), ShouldBeTrue)
			_, err = r.Resolve("   ")
			So(errors.Is(err, resolver.ErrNotFound), ShouldBeTrue)
		})

		Convey("When a resolved record is mutated", func() {
			rec, _ := r.Resolve("Sugar")
			rec.Aliases[0] = "changed"
			again, _ := r.Resolve("Sugar")
			So(again.Aliases[0], ShouldEqual, "sucrose")
		})
	})
}

func TestNormalize(t *testing.T) {
	Convey("Given a resolver over the built-in catalog", t, func() {
		r := newResolver()

		Convey("When there are exact matches", func() {
			So(r.Normalize("sugar"), ShouldResemble, []string{"Sugar"})
			So(r.Normalize("E967"), ShouldResemble, []string{"High Fructose Corn Syrup", "Sorbitol"})
		})

		Convey("When only containment matches", func() {
			So(r.Normalize("corn"), ShouldResemble, []string{"High Fructose Corn Syrup"})
			So(r.Normalize("sweet"), ShouldResemble, []string{"Aspartame"})
			So(r.Normalize("cane sugar syrup"), ShouldResemble, []string{"Sugar"})
		})

		Convey("When nothing matches", func() {
			So(r.Normalize("xylitol"), ShouldBeEmpty)
			So(r.Normalize(""), ShouldBeEmpty)
		})
	})
}

func TestKey(t *testing.T) {
	Convey("Given raw strings", t, func() {
		So(resolver.Key("  NutraSweet "), ShouldEqual, "nutrasweet")
		So(resolver.Key("ＥＹ"), ShouldEqual, "ey")
		So(resolver.Key(""), ShouldEqual, "")
	})
}
