package gateway_test

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/mucharafal/py4j/codec"
	"github.com/mucharafal/py4j/gateway"
	"github.com/mucharafal/py4j/metrics"
	"github.com/mucharafal/py4j/resolve/govalue"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type counter struct {
	n int
}

func newCounter() *counter { return &counter{} }

func (c *counter) Incr(by int) int {
	c.n += by
	return c.n
}

func (c *counter) Fail() (int, error) {
	return 0, fmt.Errorf("boom")
}

func newGateway() (*gateway.Gateway, *govalue.Catalog) {
	catalog := govalue.NewCatalog()
	catalog.RegisterConstructor("acme.Counter", newCounter)
	catalog.RegisterClass("acme.Counter", &counter{})
	catalog.RegisterPackage("acme")
	g := gateway.New(nil, gateway.WithResolver(govalue.NewResolver(catalog)))
	_ = g.Startup(context.Background())
	return g, catalog
}

var _ = Describe("Gateway", func() {
	var g *gateway.Gateway
	var ctx context.Context

	BeforeEach(func() {
		g, _ = newGateway()
		ctx = context.Background()
	})

	Describe("constructor and call", func() {
		It("constructs an instance and invokes a method on it", func() {
			ro := g.InvokeConstructor("acme.Counter")
			Expect(ro.Kind).To(Equal(codec.ObjReference))

			result := g.Invoke("Incr", ro.ID, codec.Int(5))
			Expect(result.Kind).To(Equal(codec.ObjPrimitive))
			Expect(result.Primitive.Int).To(Equal(int32(5)))
		})

		It("converts a method error into an exception envelope", func() {
			ro := g.InvokeConstructor("acme.Counter")
			result := g.Invoke("Fail", ro.ID)
			Expect(result.Kind).To(Equal(codec.ObjError))
			Expect(result.ErrKind).To(Equal(codec.ErrException))
			Expect(result.ErrID).ToNot(BeEmpty())
		})

		It("fails a call against an unknown id with NoSuchObject", func() {
			ro, ok := g.Dispatch(ctx, "call", "", []codec.Value{codec.Ref("o999"), codec.Str("Incr"), codec.Int(1)})
			Expect(ok).To(BeTrue())
			Expect(ro.Kind).To(Equal(codec.ObjError))
			Expect(ro.ErrKind).To(Equal(codec.ErrNoSuchObject))
		})
	})

	Describe("Dispatch for list/map/set operations", func() {
		It("supports list.get/list.set/list.append/list.size", func() {
			id := g.PutNewObject([]interface{}{int32(1), int32(2), int32(3)})

			sz, ok := g.Dispatch(ctx, "list", "size", []codec.Value{codec.Ref(id)})
			Expect(ok).To(BeTrue())
			Expect(sz.Primitive.Int).To(Equal(int32(3)))

			got, ok := g.Dispatch(ctx, "list", "get", []codec.Value{codec.Ref(id), codec.Int(1)})
			Expect(ok).To(BeTrue())
			Expect(got.Primitive.Int).To(Equal(int32(2)))

			_, ok = g.Dispatch(ctx, "list", "set", []codec.Value{codec.Ref(id), codec.Int(0), codec.Int(42)})
			Expect(ok).To(BeTrue())

			got, _ = g.Dispatch(ctx, "list", "get", []codec.Value{codec.Ref(id), codec.Int(0)})
			Expect(got.Primitive.Int).To(Equal(int32(42)))

			_, ok = g.Dispatch(ctx, "list", "append", []codec.Value{codec.Ref(id), codec.Int(9)})
			Expect(ok).To(BeTrue())

			sz, _ = g.Dispatch(ctx, "list", "size", []codec.Value{codec.Ref(id)})
			Expect(sz.Primitive.Int).To(Equal(int32(4)))
		})

		It("supports map.put/map.get/map.remove", func() {
			id := g.PutNewObject(map[string]interface{}{"a": int32(1)})

			_, ok := g.Dispatch(ctx, "map", "put", []codec.Value{codec.Ref(id), codec.Str("b"), codec.Int(2)})
			Expect(ok).To(BeTrue())

			got, _ := g.Dispatch(ctx, "map", "get", []codec.Value{codec.Ref(id), codec.Str("b")})
			Expect(got.Primitive.Int).To(Equal(int32(2)))

			removed, _ := g.Dispatch(ctx, "map", "remove", []codec.Value{codec.Ref(id), codec.Str("a")})
			Expect(removed.Primitive.Int).To(Equal(int32(1)))

			missing, _ := g.Dispatch(ctx, "map", "get", []codec.Value{codec.Ref(id), codec.Str("a")})
			Expect(missing.Kind).To(Equal(codec.ObjNull))
		})
	})

	Describe("memory and jvmview commands", func() {
		It("releases an object so later access fails", func() {
			id := g.PutNewObject(&counter{})
			_, ok := g.Dispatch(ctx, "memory", "release", []codec.Value{codec.Ref(id)})
			Expect(ok).To(BeTrue())
			_, present := g.GetObject(id)
			Expect(present).To(BeFalse())
		})

		It("attach succeeds while bound and fails once released", func() {
			id := g.PutNewObject(&counter{})
			ro, _ := g.Dispatch(ctx, "memory", "attach", []codec.Value{codec.Ref(id)})
			Expect(ro.Kind).To(Equal(codec.ObjVoid))

			g.DeleteObject(id)
			ro, _ = g.Dispatch(ctx, "memory", "attach", []codec.Value{codec.Ref(id)})
			Expect(ro.ErrKind).To(Equal(codec.ErrNoSuchObject))
		})

		It("creates, imports into, and destroys a view", func() {
			ro, ok := g.Dispatch(ctx, "jvmview", "create", []codec.Value{codec.Str("extra")})
			Expect(ok).To(BeTrue())
			Expect(ro.Kind).To(Equal(codec.ObjReference))

			_, ok = g.Dispatch(ctx, "jvmview", "import", []codec.Value{codec.Str("extra"), codec.Str("acme.Counter")})
			Expect(ok).To(BeTrue())

			_, ok = g.Dispatch(ctx, "jvmview", "destroy", []codec.Value{codec.Str("extra")})
			Expect(ok).To(BeTrue())
		})
	})

	Describe("reflection.getUnknown", func() {
		It("classifies a registered class", func() {
			ro, ok := g.Dispatch(ctx, "reflection", "getUnknown", []codec.Value{codec.Str("acme.Counter")})
			Expect(ok).To(BeTrue())
			Expect(ro.Primitive.Str).To(Equal("CLASS"))
		})

		It("classifies a registered package", func() {
			ro, ok := g.Dispatch(ctx, "reflection", "getUnknown", []codec.Value{codec.Str("acme")})
			Expect(ok).To(BeTrue())
			Expect(ro.Primitive.Str).To(Equal("PACKAGE"))
		})

		It("classifies an unknown name", func() {
			ro, ok := g.Dispatch(ctx, "reflection", "getUnknown", []codec.Value{codec.Str("nowhere.Nothing")})
			Expect(ok).To(BeTrue())
			Expect(ro.Primitive.Str).To(Equal("UNKNOWN"))
		})
	})

	Describe("unknown commands", func() {
		It("reports not-ok by default instead of a protocol error", func() {
			_, ok := g.Dispatch(ctx, "nonsense", "verb", nil)
			Expect(ok).To(BeFalse())
		})

		It("replies with a protocol error when strict mode is enabled", func() {
			strict := gateway.New(nil, gateway.WithStrictUnknownCommand(true))
			ro, ok := strict.Dispatch(ctx, "nonsense", "verb", nil)
			Expect(ok).To(BeTrue())
			Expect(ro.ErrKind).To(Equal(codec.ErrProtocol))
		})
	})

	Describe("metrics", func() {
		It("records dispatched commands, error kinds, and registry size", func() {
			catalog := govalue.NewCatalog()
			catalog.RegisterConstructor("acme.Counter", newCounter)
			catalog.RegisterClass("acme.Counter", &counter{})

			m := metrics.New(prometheus.NewRegistry())
			mg := gateway.New(nil, gateway.WithResolver(govalue.NewResolver(catalog)), gateway.WithMetrics(m))
			Expect(mg.Startup(ctx)).To(Succeed())

			ro, ok := mg.Dispatch(ctx, "constructor", "", []codec.Value{codec.Str("acme.Counter")})
			Expect(ok).To(BeTrue())
			Expect(ro.Kind).To(Equal(codec.ObjReference))

			var sizeOut dto.Metric
			Expect(m.RegistrySize.Write(&sizeOut)).To(Succeed())
			Expect(sizeOut.GetGauge().GetValue()).To(BeNumerically(">=", 1.0))

			var cmdOut dto.Metric
			Expect(m.CommandsTotal.WithLabelValues("constructor").Write(&cmdOut)).To(Succeed())
			Expect(cmdOut.GetCounter().GetValue()).To(Equal(1.0))

			_, ok = mg.Dispatch(ctx, "call", "", []codec.Value{codec.Ref("o999"), codec.Str("Incr"), codec.Int(1)})
			Expect(ok).To(BeTrue())

			var errOut dto.Metric
			Expect(m.CommandErrorsTotal.WithLabelValues("call", "NoSuchObject").Write(&errOut)).To(Succeed())
			Expect(errOut.GetCounter().GetValue()).To(Equal(1.0))
		})
	})

	Describe("shutdown", func() {
		It("clears the registry so previously bound ids disappear", func() {
			id := g.PutNewObject(&counter{})
			_, ok := g.Dispatch(ctx, "shutdown", "", nil)
			Expect(ok).To(BeTrue())
			_, present := g.GetObject(id)
			Expect(present).To(BeFalse())
		})
	})
})
