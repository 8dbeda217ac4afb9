package dfft_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestDfft(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "dfft Suite")
}
