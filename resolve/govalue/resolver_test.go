package govalue_test

import (
	"fmt"

	"github.com/mucharafal/py4j/codec"
	"github.com/mucharafal/py4j/resolve"
	"github.com/mucharafal/py4j/resolve/govalue"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type point struct {
	X, Y int
}

func newPoint(x, y int) *point { return &point{X: x, Y: y} }

func newOrigin() *point { return &point{} }

func (p *point) Add(other *point) *point {
	return &point{X: p.X + other.X, Y: p.Y + other.Y}
}

func (p *point) Label() (string, error) {
	if p == nil {
		return "", fmt.Errorf("nil point")
	}
	return fmt.Sprintf("(%d,%d)", p.X, p.Y), nil
}

var _ = Describe("Resolver", func() {
	var catalog *govalue.Catalog
	var r *govalue.Resolver

	BeforeEach(func() {
		catalog = govalue.NewCatalog()
		Expect(catalog.RegisterConstructor("acme.Point", newPoint)).To(Succeed())
		Expect(catalog.RegisterConstructor("acme.Point", newOrigin)).To(Succeed())
		catalog.RegisterClass("acme.Point", &point{})
		catalog.RegisterPackage("acme")
		r = govalue.NewResolver(catalog)
	})

	Describe("ResolveConstructor", func() {
		It("picks the overload matching the argument count", func() {
			inv, err := r.ResolveConstructor("acme.Point", []codec.Value{codec.Int(3), codec.Int(4)})
			Expect(err).ToNot(HaveOccurred())
			result, err := inv.Invoke()
			Expect(err).ToNot(HaveOccurred())
			p := result.(*point)
			Expect(p.X).To(Equal(3))
			Expect(p.Y).To(Equal(4))
		})

		It("picks the zero-arg overload", func() {
			inv, err := r.ResolveConstructor("acme.Point", nil)
			Expect(err).ToNot(HaveOccurred())
			result, err := inv.Invoke()
			Expect(err).ToNot(HaveOccurred())
			Expect(result.(*point)).To(Equal(&point{}))
		})

		It("errors when no class is registered", func() {
			_, err := r.ResolveConstructor("acme.Missing", nil)
			Expect(err).To(HaveOccurred())
		})

		It("errors when no overload matches the arity", func() {
			_, err := r.ResolveConstructor("acme.Point", []codec.Value{codec.Int(1), codec.Int(2), codec.Int(3)})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ResolveMethod", func() {
		It("invokes a method returning (value, error)", func() {
			p := &point{X: 5, Y: 6}
			inv, err := r.ResolveMethod(p, "Label", nil)
			Expect(err).ToNot(HaveOccurred())
			result, err := inv.Invoke()
			Expect(err).ToNot(HaveOccurred())
			Expect(result).To(Equal("(5,6)"))
		})

		It("errors for an unknown method name", func() {
			p := &point{}
			_, err := r.ResolveMethod(p, "Nope", nil)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ResolveField", func() {
		It("gets a field value", func() {
			p := &point{X: 7, Y: 8}
			f, err := r.ResolveField(p, "X")
			Expect(err).ToNot(HaveOccurred())
			v, err := f.Get()
			Expect(err).ToNot(HaveOccurred())
			Expect(v).To(Equal(7))
		})

		It("sets a field value", func() {
			p := &point{}
			f, err := r.ResolveField(p, "Y")
			Expect(err).ToNot(HaveOccurred())
			Expect(f.Set(codec.Int(42))).To(Succeed())
			Expect(p.Y).To(Equal(42))
		})

		It("errors for an unknown field name", func() {
			p := &point{}
			_, err := r.ResolveField(p, "Z")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Classify", func() {
		identity := func(bare string) (string, bool) { return "", false }

		It("classifies a registered class", func() {
			Expect(r.Classify(identity, "acme.Point")).To(Equal(resolve.MemberClass))
		})

		It("classifies a registered package prefix", func() {
			Expect(r.Classify(identity, "acme")).To(Equal(resolve.MemberPackage))
		})

		It("classifies an unknown name", func() {
			Expect(r.Classify(identity, "nowhere.Nothing")).To(Equal(resolve.MemberUnknown))
		})

		It("uses the view resolver to expand a bare name first", func() {
			resolveBare := func(bare string) (string, bool) {
				if bare == "Point" {
					return "acme.Point", true
				}
				return "", false
			}
			Expect(r.Classify(resolveBare, "Point")).To(Equal(resolve.MemberClass))
		})
	})

	Describe("Signatures", func() {
		It("lists registered constructors by fully qualified name", func() {
			sigs, err := r.Signatures("acme.Point")
			Expect(err).ToNot(HaveOccurred())
			Expect(sigs).To(HaveLen(2))
		})

		It("lists exported methods of an instance's dynamic type", func() {
			p := &point{}
			sigs, err := r.Signatures(p)
			Expect(err).ToNot(HaveOccurred())
			names := make([]string, 0, len(sigs))
			for _, s := range sigs {
				names = append(names, s.Name)
			}
			Expect(names).To(ContainElements("Add", "Label"))
		})
	})
})
