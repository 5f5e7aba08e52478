package biocmder_test

import (
	"context"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	biocmder "github.com/papercomputeco/wingman/cmd/wingman/bio"
	"github.com/papercomputeco/wingman/cmd/wingman/cmdtest"
	"github.com/papercomputeco/wingman/pkg/llm"
	"github.com/papercomputeco/wingman/pkg/llm/fake"
	"github.com/papercomputeco/wingman/pkg/session"
)

var _ = Describe("Bio commands", func() {
	var (
		env *cmdtest.Env

		mu      sync.Mutex
		prompts []string
	)

	lastPrompt := func() string {
		mu.Lock()
		defer mu.Unlock()
		if len(prompts) == 0 {
			return ""
		}
		return prompts[len(prompts)-1]
	}

	BeforeEach(func() {
		prompts = nil
		env = cmdtest.NewEnv(cmdtest.Server(fake.New(fake.WithResponder(func(req *llm.GenerateRequest) (string, error) {
			mu.Lock()
			prompts = append(prompts, req.Prompt)
			mu.Unlock()
			return "  Chef by day, amateur astronomer by night.  ", nil
		}))))
	})

	Describe("generate", func() {
		It("requires a login", func() {
			_, err := env.Run("", biocmder.NewBioCmd(), "generate", "--occupation", "chef")
			Expect(err).To(MatchError(session.ErrNotLoggedIn))
		})

		It("writes a description and saves it on the profile", func() {
			s := env.Login("sam@example.com")

			out, err := env.Run("", biocmder.NewBioCmd(), "generate", "--occupation", "chef", "--interests", "stars", "--tone", "mysterious")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal("\nChef by day, amateur astronomer by night.\n\n"))

			Expect(lastPrompt()).To(ContainSubstring("chef"))
			Expect(lastPrompt()).To(ContainSubstring("29"))

			Eventually(func() (string, error) {
				u, err := env.Client().GetUser(context.Background(), s.UserID)
				if err != nil {
					return "", err
				}
				return u.Description, nil
			}).Should(Equal("Chef by day, amateur astronomer by night."))
		})

		It("requires an occupation", func() {
			env.Login("sam@example.com")
			_, err := env.Run("", biocmder.NewBioCmd(), "generate")
			Expect(err).To(MatchError("Please fill in at least your age and occupation"))
			Expect(lastPrompt()).To(BeEmpty())
		})

		It("rejects unknown style options", func() {
			env.Login("sam@example.com")
			_, err := env.Run("", biocmder.NewBioCmd(), "generate", "--occupation", "chef", "--length", "epic")
			Expect(err).To(MatchError(ContainSubstring("Length must be one of short, medium, long")))
		})
	})

	Describe("refine", func() {
		It("refines the description from the argument", func() {
			env.Login("sam@example.com")

			out, err := env.Run("", biocmder.NewBioCmd(), "refine", "I cook.", "--adjustments", "more playful")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("amateur astronomer"))
			Expect(lastPrompt()).To(ContainSubstring("I cook."))
			Expect(lastPrompt()).To(ContainSubstring("more playful"))
		})

		It("reads the description from stdin", func() {
			env.Login("sam@example.com")

			_, err := env.Run("I read a lot.\n", biocmder.NewBioCmd(), "refine")
			Expect(err).NotTo(HaveOccurred())
			Expect(lastPrompt()).To(ContainSubstring("I read a lot."))
		})

		It("requires a description", func() {
			env.Login("sam@example.com")
			_, err := env.Run("", biocmder.NewBioCmd(), "refine")
			Expect(err).To(MatchError("Description is required"))
		})
	})
})
