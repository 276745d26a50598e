package cpu_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestCpuSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "RV32IMA Program Suite")
}
