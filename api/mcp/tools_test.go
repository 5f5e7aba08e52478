package mcp

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/wingman/pkg/dating"
	"github.com/papercomputeco/wingman/pkg/llm"
	"github.com/papercomputeco/wingman/pkg/llm/fake"
	"github.com/papercomputeco/wingman/pkg/logger"
	"github.com/papercomputeco/wingman/pkg/storage/inmemory"
)

var _ = Describe("Tools", func() {
	var (
		s      *Server
		driver *inmemory.Driver
		ctx    context.Context
	)

	newServer := func(gen llm.Generator) *Server {
		srv, err := NewServer(Config{Driver: driver, Generator: gen, Logger: logger.Nop()})
		Expect(err).NotTo(HaveOccurred())
		return srv
	}

	BeforeEach(func() {
		ctx = context.Background()
		driver = inmemory.NewDriver()
		s = newServer(fake.New())
	})

	Describe("love_calculator", func() {
		It("scores two names", func() {
			res, out, err := s.handleLove(ctx, nil, LoveInput{Name1: "Ana", Name2: "Ben"})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeFalse())
			Expect(out).To(Equal(dating.LoveScore("Ben", "Ana")))
		})

		It("requires both names", func() {
			res, _, err := s.handleLove(ctx, nil, LoveInput{Name1: "Ana"})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeTrue())
		})
	})

	Describe("reply_options", func() {
		It("returns five parsed replies", func() {
			res, out, err := s.handleReplies(ctx, nil, RepliesInput{Message: "Pineapple on pizza?"})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeFalse())
			Expect(out.Replies).To(HaveLen(dating.ReplyCount))
		})

		It("rejects an unknown style", func() {
			res, _, err := s.handleReplies(ctx, nil, RepliesInput{Message: "hi", Style: "rude"})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeTrue())
		})

		It("reports generator failures as tool errors", func() {
			s = newServer(fake.New(fake.WithResponder(func(*llm.GenerateRequest) (string, error) {
				return "", errors.New("model exploded")
			})))
			res, _, err := s.handleReplies(ctx, nil, RepliesInput{Message: "hi"})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeTrue())
		})
	})

	Describe("profile_description", func() {
		It("writes a description", func() {
			res, out, err := s.handleDescribe(ctx, nil, DescribeInput{Age: 31, Occupation: "nurse"})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeFalse())
			Expect(out.Description).NotTo(BeEmpty())
		})

		It("asks for age and occupation", func() {
			res, _, err := s.handleDescribe(ctx, nil, DescribeInput{Interests: "chess"})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeTrue())
		})
	})

	Describe("recent_responses", func() {
		It("lists stored answers newest first up to the limit", func() {
			for _, p := range []string{"a", "b", "c"} {
				Expect(driver.PutResponse(ctx, &dating.Response{Prompt: p, Response: "re " + p})).To(Succeed())
			}

			_, out, err := s.handleHistory(ctx, nil, HistoryInput{Limit: 2})
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Count).To(Equal(2))
			Expect(out.Responses[0].Prompt).To(Equal("c"))
			Expect(out.Responses[1].Prompt).To(Equal("b"))
		})

		It("returns an empty list", func() {
			_, out, err := s.handleHistory(ctx, nil, HistoryInput{})
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Responses).To(BeEmpty())
		})
	})
})
