package classify_test

import (
	"strconv"
	"sync/atomic"

	"github.com/mucharafal/py4j/classify"
	"github.com/mucharafal/py4j/codec"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakeBinder struct {
	n     atomic.Int64
	bound map[string]interface{}
}

func newFakeBinder() *fakeBinder {
	return &fakeBinder{bound: map[string]interface{}{}}
}

func (f *fakeBinder) PutNew(obj interface{}) string {
	id := "o" + strconv.FormatInt(f.n.Add(1)-1, 10)
	f.bound[id] = obj
	return id
}

// listAndIterator implements both classify.List and classify.Iterator, to
// exercise the list-over-iterator precedence tie-break (§8 invariant 3).
type listAndIterator struct{ items []int }

func (l listAndIterator) Len() int                   { return len(l.items) }
func (l listAndIterator) Next() (interface{}, bool)  { return nil, false }

type onlyIterator struct{}

func (onlyIterator) Next() (interface{}, bool) { return nil, false }

type onlySet struct{ n int }

func (s onlySet) Len() int { return s.n }

var _ = Describe("Classify", func() {
	var b *fakeBinder

	BeforeEach(func() {
		b = newFakeBinder()
	})

	It("classifies nil as null", func() {
		ro := classify.Classify(b, nil)
		Expect(ro.Kind).To(Equal(codec.ObjNull))
	})

	It("classifies the void sentinel as void", func() {
		ro := classify.Classify(b, classify.Void)
		Expect(ro.Kind).To(Equal(codec.ObjVoid))
	})

	DescribeTable("primitives never get an id",
		func(v interface{}) {
			ro := classify.Classify(b, v)
			Expect(ro.Kind).To(Equal(codec.ObjPrimitive))
			Expect(b.bound).To(BeEmpty())
		},
		Entry("bool", true),
		Entry("string", "hi"),
		Entry("int", 42),
		Entry("int64", int64(9000000000)),
		Entry("float64", 3.14),
		Entry("character", classify.Character('Q')),
	)

	It("classifies a bare Go slice as a list with its length", func() {
		ro := classify.Classify(b, []int{1, 2, 3})
		Expect(ro.Kind).To(Equal(codec.ObjList))
		Expect(ro.Size).To(Equal(int64(3)))
	})

	It("classifies a bare Go array", func() {
		ro := classify.Classify(b, [4]int{})
		Expect(ro.Kind).To(Equal(codec.ObjArray))
		Expect(ro.Length).To(Equal(int64(4)))
	})

	It("classifies a bare Go map", func() {
		ro := classify.Classify(b, map[string]int{"a": 1, "b": 2})
		Expect(ro.Kind).To(Equal(codec.ObjMap))
		Expect(ro.Size).To(Equal(int64(2)))
	})

	It("classifies a set-like value", func() {
		ro := classify.Classify(b, onlySet{n: 5})
		Expect(ro.Kind).To(Equal(codec.ObjSet))
		Expect(ro.Size).To(Equal(int64(5)))
	})

	It("classifies an iterator-like value with no size", func() {
		ro := classify.Classify(b, onlyIterator{})
		Expect(ro.Kind).To(Equal(codec.ObjIterator))
		Expect(ro.Size).To(BeZero())
	})

	It("classifies a value that is both list- and iterator-like as a list (invariant 3)", func() {
		ro := classify.Classify(b, listAndIterator{items: []int{1, 2}})
		Expect(ro.Kind).To(Equal(codec.ObjList))
		Expect(ro.Size).To(Equal(int64(2)))
	})

	It("falls back to reference for anything else", func() {
		type opaque struct{ X int }
		ro := classify.Classify(b, &opaque{X: 1})
		Expect(ro.Kind).To(Equal(codec.ObjReference))
		Expect(b.bound).To(HaveLen(1))
	})
})
