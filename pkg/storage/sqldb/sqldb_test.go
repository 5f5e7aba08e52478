package sqldb_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/wingman/pkg/storage/sqldb"
)

var _ = Describe("Dollar", func() {
	It("numbers placeholders in order", func() {
		Expect(sqldb.Dollar("UPDATE users SET name = ?, age = ? WHERE id = ?")).
			To(Equal("UPDATE users SET name = $1, age = $2 WHERE id = $3"))
	})

	It("leaves queries without placeholders alone", func() {
		Expect(sqldb.Dollar("SELECT 1")).To(Equal("SELECT 1"))
	})
})
