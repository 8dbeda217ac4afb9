package dfft_test

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/sync/errgroup"

	"github.com/luxfi/distprove/pkg/dfft"
	distnet "github.com/luxfi/distprove/pkg/net"
	"github.com/luxfi/distprove/pkg/pss"
)

func buildColumns(params *pss.Params, x []fr.Element) [][]fr.Element {
	m := len(x)
	l := params.L
	mbyl := m / l

	rearranged := append([]fr.Element(nil), x...)
	dfft.FFTInPlaceRearrange(rearranged)

	cols := make([][]fr.Element, params.N)
	for p := range cols {
		cols[p] = make([]fr.Element, mbyl)
	}
	row := make([]fr.Element, l)
	for pos := 0; pos < mbyl; pos++ {
		for ii := 0; ii < l; ii++ {
			row[ii] = rearranged[pos+ii*mbyl]
		}
		packed, err := params.PackFromPublic(row)
		Expect(err).NotTo(HaveOccurred())
		for p := 0; p < params.N; p++ {
			cols[p][pos] = packed[p]
		}
	}
	return cols
}

func unpackColumns(params *pss.Params, perPartyCols [][]fr.Element) []fr.Element {
	mbyl := len(perPartyCols[0])
	l := params.L
	out := make([]fr.Element, mbyl*l)
	shares := make([]fr.Element, params.N)
	for pos := 0; pos < mbyl; pos++ {
		for p := 0; p < params.N; p++ {
			shares[p] = perPartyCols[p][pos]
		}
		secrets, err := params.Unpack(shares)
		Expect(err).NotTo(HaveOccurred())
		copy(out[pos*l:(pos+1)*l], secrets)
	}
	return out
}

func runForwardG(params *pss.Params, cols [][]fr.Element, m int) [][]fr.Element {
	routers := distnet.NewLocalSession(params.N)
	results := make([][]fr.Element, params.N)
	var g errgroup.Group
	for i := 0; i < params.N; i++ {
		i := i
		g.Go(func() error {
			res, err := dfft.New(params, routers[i]).Forward(cols[i], m)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	Expect(g.Wait()).To(Succeed())
	return results
}

func runInverseG(params *pss.Params, cols [][]fr.Element, m, extensionFactor int) [][]fr.Element {
	routers := distnet.NewLocalSession(params.N)
	results := make([][]fr.Element, params.N)
	var g errgroup.Group
	for i := 0; i < params.N; i++ {
		i := i
		g.Go(func() error {
			res, err := dfft.New(params, routers[i]).Inverse(cols[i], m, extensionFactor)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	Expect(g.Wait()).To(Succeed())
	return results
}

var _ = Describe("distributed inverse FFT", func() {
	var (
		params *pss.Params
		m      int
		x      []fr.Element
	)

	BeforeEach(func() {
		var err error
		params, err = pss.NewParams(2)
		Expect(err).NotTo(HaveOccurred())
		m = 16

		x = make([]fr.Element, m)
		for i := range x {
			x[i].SetUint64(uint64(i + 1))
		}
	})

	It("inverts the forward transform (IFFT(FFT(x)) == x)", func() {
		cols := buildColumns(params, x)
		forward := runForwardG(params, cols, m)

		inverseCols := buildColumns(params, unpackColumns(params, forward))
		inverse := runInverseG(params, inverseCols, m, 1)

		got := unpackColumns(params, inverse)
		for i := range got {
			Expect(got[i].Equal(&x[i])).To(BeTrue(), "index %d", i)
		}
	})

	It("lifts evaluations onto an extended domain matching a direct pad-and-FFT", func() {
		const extensionFactor = 4
		cols := buildColumns(params, x)
		forward := runForwardG(params, cols, m)

		inverseCols := buildColumns(params, unpackColumns(params, forward))
		extended := runInverseG(params, inverseCols, m, extensionFactor)
		got := unpackColumns(params, extended)

		dom, err := pss.NewDomain(uint64(m))
		Expect(err).NotTo(HaveOccurred())
		coeffs := dom.IFFT(append([]fr.Element(nil), x...))

		extDom, err := pss.NewDomain(uint64(m * extensionFactor))
		Expect(err).NotTo(HaveOccurred())
		want := extDom.FFT(coeffs)

		Expect(len(got)).To(Equal(len(want)))
		for i := range want {
			Expect(got[i].Equal(&want[i])).To(BeTrue(), "index %d", i)
		}
	})
})
