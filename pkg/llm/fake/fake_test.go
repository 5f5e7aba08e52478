package fake_test

import (
	"context"
	"errors"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/wingman/pkg/llm"
	"github.com/papercomputeco/wingman/pkg/llm/fake"
)

var _ = Describe("Generator", func() {
	It("streams tokens that add up to the full text", func() {
		g := fake.New(fake.WithText("hello there\nfriend"))

		var tokens []string
		res, err := g.Generate(context.Background(), &llm.GenerateRequest{Prompt: "hi"}, func(tok string) error {
			tokens = append(tokens, tok)
			return nil
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(tokens).To(Equal([]string{"hello ", "there\n", "friend"}))
		Expect(strings.Join(tokens, "")).To(Equal(res.Text))
	})

	It("answers reply prompts with five numbered options", func() {
		res, err := fake.New().Generate(context.Background(), &llm.GenerateRequest{Prompt: "Write exactly 5 different reply options."}, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(strings.Count(res.Text, "\n")).To(Equal(4))
		Expect(res.Text).To(HavePrefix("1. "))
	})

	It("propagates responder errors", func() {
		boom := errors.New("boom")
		g := fake.New(fake.WithResponder(func(*llm.GenerateRequest) (string, error) { return "", boom }))

		_, err := g.Generate(context.Background(), &llm.GenerateRequest{}, nil)
		Expect(err).To(MatchError(boom))
	})

	It("aborts when the token callback fails", func() {
		stop := errors.New("stop")
		calls := 0
		_, err := fake.New(fake.WithText("a b c")).Generate(context.Background(), &llm.GenerateRequest{}, func(string) error {
			calls++
			return stop
		})
		Expect(err).To(MatchError(stop))
		Expect(calls).To(Equal(1))
	})

	It("honours cancellation between tokens", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()

		g := fake.New(fake.WithText(strings.Repeat("word ", 100)), fake.WithDelay(10*time.Millisecond))
		_, err := g.Generate(ctx, &llm.GenerateRequest{}, nil)
		Expect(err).To(MatchError(context.DeadlineExceeded))
	})

	It("splits tokens losslessly", func() {
		for _, text := range []string{"", "one", "a  b", "trailing ", "\n\nx"} {
			Expect(strings.Join(fake.Tokens(text), "")).To(Equal(text))
		}
	})
})
