package celllists_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestCellLists(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "CellLists Suite")
}
