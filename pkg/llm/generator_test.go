package llm_test

import (
	"errors"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/wingman/pkg/llm"
)

var _ = Describe("Error", func() {
	It("shows only the user-facing message", func() {
		err := &llm.Error{Status: http.StatusServiceUnavailable, Message: "backend down", Err: llm.ErrUnavailable}
		Expect(err.Error()).To(Equal("backend down"))
		Expect(errors.Is(err, llm.ErrUnavailable)).To(BeTrue())
		Expect(errors.Is(err, llm.ErrTimeout)).To(BeFalse())
	})
})
