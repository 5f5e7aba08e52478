package replycmder_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/wingman/cmd/wingman/cmdtest"
	replycmder "github.com/papercomputeco/wingman/cmd/wingman/reply"
	"github.com/papercomputeco/wingman/pkg/llm/fake"
	"github.com/papercomputeco/wingman/pkg/session"
)

var _ = Describe("Reply command", func() {
	var env *cmdtest.Env

	BeforeEach(func() {
		env = cmdtest.NewEnv(cmdtest.Server(fake.New()))
	})

	It("requires a login", func() {
		_, err := env.Run("", replycmder.NewReplyCmd(), "hey")
		Expect(err).To(MatchError(session.ErrNotLoggedIn))
	})

	It("prints five numbered replies", func() {
		env.Login("sam@example.com")

		out, err := env.Run("", replycmder.NewReplyCmd(), "Pineapple", "on", "pizza?")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Okay, you've got my attention."))
		Expect(out).To(ContainSubstring("5."))
		Expect(out).To(ContainSubstring("I'm intrigued. What's the story behind that?"))
		Expect(out).NotTo(ContainSubstring("6."))
	})

	It("prints the raw output with --raw", func() {
		env.Login("sam@example.com")

		out, err := env.Run("What are you reading?\n", replycmder.NewReplyCmd(), "--raw", "--style", "intellectual")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(HavePrefix("1. Haha, I like where this is going."))
	})

	It("validates the message and the options", func() {
		env.Login("sam@example.com")

		_, err := env.Run("", replycmder.NewReplyCmd())
		Expect(err).To(MatchError("Message is required"))

		_, err = env.Run("", replycmder.NewReplyCmd(), "--style", "rude", "hey")
		Expect(err).To(MatchError(ContainSubstring("Style must be one of")))
	})
})
