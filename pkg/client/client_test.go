package client_test

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/wingman/api"
	"github.com/papercomputeco/wingman/pkg/client"
	"github.com/papercomputeco/wingman/pkg/dating"
	"github.com/papercomputeco/wingman/pkg/llm"
	"github.com/papercomputeco/wingman/pkg/llm/fake"
	"github.com/papercomputeco/wingman/pkg/logger"
	"github.com/papercomputeco/wingman/pkg/storage/inmemory"
	"github.com/papercomputeco/wingman/pkg/stream"
)

// startServer runs a real API server on a loopback port.
func startServer(gen llm.Generator) string {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	Expect(err).NotTo(HaveOccurred())

	server, err := api.NewServer(api.Config{}, inmemory.NewDriver(), gen, logger.Nop())
	Expect(err).NotTo(HaveOccurred())

	go func() {
		defer GinkgoRecover()
		_ = server.RunWithListener(ln)
	}()
	DeferCleanup(func() { _ = server.Shutdown() })

	return "http://" + ln.Addr().String()
}

func collect(text *strings.Builder) stream.Handlers {
	return stream.Handlers{
		OnChunk: func(chunk string) error {
			text.WriteString(chunk)
			return nil
		},
	}
}

var _ = Describe("Client", func() {
	var (
		ctx context.Context
		c   *client.Client
	)

	BeforeEach(func() {
		ctx = context.Background()
		c = client.New(startServer(fake.New())+"/", client.WithLogger(logger.Nop()))
	})

	register := func(email string) *dating.User {
		u, err := c.CreateUser(ctx, dating.Registration{
			Name: "Sam", Email: email, Sex: "female", Age: 29, Password: "hunter22",
		})
		Expect(err).NotTo(HaveOccurred())
		return u
	}

	It("trims the trailing slash of the base URL", func() {
		Expect(c.BaseURL()).NotTo(HaveSuffix("/"))
		Expect(c.Ping(ctx)).To(Succeed())
	})

	Describe("accounts", func() {
		It("registers, fetches and logs in a user", func() {
			u := register("sam@example.com")

			got, err := c.GetUser(ctx, u.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Email).To(Equal("sam@example.com"))

			logged, err := c.Login(ctx, dating.Credentials{Email: "SAM@example.com", Password: "hunter22"})
			Expect(err).NotTo(HaveOccurred())
			Expect(logged.ID).To(Equal(u.ID))
		})

		It("returns the API message and status on failure", func() {
			register("sam@example.com")

			_, err := c.Login(ctx, dating.Credentials{Email: "sam@example.com", Password: "nope-nope"})
			var apiErr *client.APIError
			Expect(errors.As(err, &apiErr)).To(BeTrue())
			Expect(apiErr.Status).To(Equal(http.StatusUnauthorized))
			Expect(apiErr.Message).To(Equal("Invalid email or password"))

			_, err = c.GetUser(ctx, 999)
			Expect(client.StatusOf(err)).To(Equal(http.StatusNotFound))
		})

		It("updates a profile", func() {
			u := register("sam@example.com")

			updated, err := c.UpdateUser(ctx, dating.ProfileUpdate{
				UserID: u.ID, Name: "Samantha", Email: "sam@example.com", Sex: "female", Age: 30,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Name).To(Equal("Samantha"))
			Expect(updated.Age).To(Equal(30))
		})
	})

	Describe("chat windows", func() {
		It("creates and lists chat windows", func() {
			u := register("sam@example.com")

			w, err := c.CreateChatWindow(ctx, dating.NewChatWindow{UserID: u.ID, Title: "Friday"})
			Expect(err).NotTo(HaveOccurred())
			Expect(w.ID).NotTo(BeEmpty())

			windows, err := c.ChatWindows(ctx, u.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(windows).To(HaveLen(1))
			Expect(windows[0].Title).To(Equal("Friday"))
		})
	})

	Describe("generation", func() {
		It("returns a complete answer", func() {
			text, err := c.Generate(ctx, dating.GenerateRequest{Prompt: "first date ideas?"})
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(ContainSubstring("Be yourself"))
		})

		It("streams an answer until the done event", func() {
			var text strings.Builder
			res, err := c.GenerateStream(ctx, dating.GenerateRequest{Prompt: "first date ideas?"}, collect(&text))
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Ending).To(Equal(stream.EndedByDone))
			Expect(text.String()).To(ContainSubstring("Be yourself"))
		})

		It("records streamed answers for the history", func() {
			u := register("sam@example.com")

			var text strings.Builder
			_, err := c.GenerateStream(ctx, dating.GenerateRequest{Prompt: "opener?", UserID: u.ID}, collect(&text))
			Expect(err).NotTo(HaveOccurred())

			Eventually(func() ([]dating.Response, error) {
				return c.Responses(ctx, u.ID)
			}).Should(HaveLen(1))
		})

		It("checks the status before consuming a stream", func() {
			var text strings.Builder
			_, err := c.GenerateStream(ctx, dating.GenerateRequest{}, collect(&text))
			Expect(client.StatusOf(err)).To(Equal(http.StatusBadRequest))
			Expect(text.String()).To(BeEmpty())
		})

		It("streams reply options", func() {
			u := register("sam@example.com")

			var text strings.Builder
			res, err := c.Replies(ctx, dating.ReplyRequest{
				UserID: u.ID, Message: "hey stranger", Intention: dating.IntentionDate, Style: dating.StyleFunny,
			}, collect(&text))
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Ending).To(Equal(stream.EndedByDone))
			Expect(dating.ParseReplies(text.String())).To(HaveLen(5))
		})

		It("surfaces a server error event", func() {
			failing := client.New(startServer(fake.New(fake.WithResponder(func(*llm.GenerateRequest) (string, error) {
				return "", &llm.Error{Status: http.StatusServiceUnavailable, Message: "Could not connect to Ollama server. Is it running?", Err: llm.ErrUnavailable}
			}))))

			var text strings.Builder
			_, err := failing.GenerateStream(ctx, dating.GenerateRequest{Prompt: "hi"}, collect(&text))
			var serverErr *stream.ServerError
			Expect(errors.As(err, &serverErr)).To(BeTrue())
			Expect(serverErr.Message).To(ContainSubstring("Could not connect to Ollama"))

			_, err = failing.Generate(ctx, dating.GenerateRequest{Prompt: "hi"})
			Expect(client.StatusOf(err)).To(Equal(http.StatusServiceUnavailable))
		})

		It("stops consuming when the context is cancelled", func() {
			slow := client.New(startServer(fake.New(fake.WithDelay(50 * time.Millisecond))))

			cctx, cancel := context.WithCancel(ctx)
			var seen int
			_, err := slow.GenerateStream(cctx, dating.GenerateRequest{Prompt: "hi"}, stream.Handlers{
				OnChunk: func(string) error {
					seen++
					cancel()
					return nil
				},
			})
			Expect(err).To(MatchError(context.Canceled))
			Expect(seen).To(Equal(1))
		})
	})

	Describe("love and descriptions", func() {
		It("scores two names", func() {
			res, err := c.LoveCalculator(ctx, dating.LoveRequest{Name1: "Romeo", Name2: "Juliet"})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.LoveScore).To(BeNumerically(">=", 0))
			Expect(res.LoveScore).To(BeNumerically("<=", 100))
			Expect(res.Message).NotTo(BeEmpty())
		})

		It("generates and refines a description", func() {
			u := register("sam@example.com")

			desc, err := c.GenerateDescription(ctx, dating.BioRequest{
				UserID: u.ID,
				Basics: dating.BioBasics{Age: 29, Occupation: "nurse", Interests: "climbing"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(desc).NotTo(BeEmpty())

			refined, err := c.RefineDescription(ctx, dating.BioRefineRequest{
				UserID: u.ID, Description: desc, Adjustments: "shorter",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(refined).NotTo(BeEmpty())
		})
	})

	Describe("error bodies", func() {
		It("falls back to the status text for empty bodies", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			}))
			DeferCleanup(srv.Close)

			err := client.New(srv.URL).Ping(ctx)
			Expect(err).To(MatchError("Bad Gateway (HTTP 502)"))
		})

		It("uses a plain text body as the message", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "upstream exploded", http.StatusInternalServerError)
			}))
			DeferCleanup(srv.Close)

			err := client.New(srv.URL).Ping(ctx)
			Expect(err).To(MatchError("upstream exploded (HTTP 500)"))
		})
	})
})
