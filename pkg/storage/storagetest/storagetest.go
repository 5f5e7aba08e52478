// Package storagetest holds the behaviour every storage.Driver must show.
// Driver test suites call DriverSpecs from a top-level var declaration.
package storagetest

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/wingman/pkg/dating"
	"github.com/papercomputeco/wingman/pkg/storage"
)

// Registration returns a valid registration for email.
func Registration(email string) dating.Registration {
	return dating.Registration{
		Name:     "Sam",
		Email:    email,
		Sex:      "female",
		Age:      29,
		Password: "hunter22",
	}
}

// DriverSpecs declares the shared driver specs. newDriver is called before
// every spec; the driver it returns is closed afterwards.
func DriverSpecs(name string, newDriver func() storage.Driver) bool {
	return Describe(name+" conformance", func() {
		var (
			driver storage.Driver
			ctx    context.Context
		)

		BeforeEach(func() {
			ctx = context.Background()
			driver = nil
			driver = newDriver()
		})

		AfterEach(func() {
			if driver != nil {
				Expect(driver.Close()).To(Succeed())
			}
		})

		mustCreate := func(email string) *dating.User {
			u, err := driver.CreateUser(ctx, Registration(email))
			Expect(err).NotTo(HaveOccurred())
			return u
		}

		Describe("CreateUser", func() {
			It("assigns an id and normalizes the email", func() {
				reg := Registration("  Sam@Example.COM ")
				u, err := driver.CreateUser(ctx, reg)
				Expect(err).NotTo(HaveOccurred())
				Expect(u.ID).To(BeNumerically(">", 0))
				Expect(u.Email).To(Equal("sam@example.com"))
				Expect(u.Name).To(Equal("Sam"))
				Expect(u.Age).To(Equal(29))
				Expect(u.CreatedAt).To(BeTemporally("~", time.Now(), time.Minute))
			})

			It("hands out distinct ids", func() {
				a := mustCreate("a@example.com")
				b := mustCreate("b@example.com")
				Expect(a.ID).NotTo(Equal(b.ID))
			})

			It("rejects a taken email regardless of case", func() {
				mustCreate("sam@example.com")

				_, err := driver.CreateUser(ctx, Registration("SAM@example.com"))
				Expect(storage.IsConflict(err)).To(BeTrue())

				var conflict storage.ConflictError
				Expect(errors.As(err, &conflict)).To(BeTrue())
				Expect(conflict.Field).To(Equal("email"))
			})
		})

		Describe("GetUser", func() {
			It("returns a stored user", func() {
				created := mustCreate("sam@example.com")

				got, err := driver.GetUser(ctx, created.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(got.ID).To(Equal(created.ID))
				Expect(got.Email).To(Equal(created.Email))
				Expect(got.CreatedAt).To(BeTemporally("~", created.CreatedAt, time.Second))
			})

			It("returns NotFoundError for an unknown id", func() {
				_, err := driver.GetUser(ctx, 4242)
				Expect(storage.IsNotFound(err)).To(BeTrue())
				Expect(err.Error()).To(Equal("user not found: 4242"))
			})
		})

		Describe("GetUserByEmail", func() {
			It("finds a user with any email casing", func() {
				created := mustCreate("sam@example.com")

				got, err := driver.GetUserByEmail(ctx, " SAM@example.com")
				Expect(err).NotTo(HaveOccurred())
				Expect(got.ID).To(Equal(created.ID))
				Expect(got.Name).To(Equal("Sam"))
			})

			It("returns NotFoundError for an unknown email", func() {
				_, err := driver.GetUserByEmail(ctx, "nobody@example.com")
				Expect(storage.IsNotFound(err)).To(BeTrue())
			})
		})

		Describe("UpsertUser", func() {
			seed := dating.Registration{Name: "test", Email: "test@example.com", Sex: "male", Age: 30, Password: "test123"}

			It("creates a missing user", func() {
				u, created, err := storage.UpsertUser(ctx, driver, seed)
				Expect(err).NotTo(HaveOccurred())
				Expect(created).To(BeTrue())
				Expect(u.Email).To(Equal("test@example.com"))

				_, err = driver.Authenticate(ctx, "test@example.com", "test123")
				Expect(err).NotTo(HaveOccurred())
			})

			It("overwrites the profile and password of an existing user", func() {
				existing := mustCreate("test@example.com")

				u, created, err := storage.UpsertUser(ctx, driver, seed)
				Expect(err).NotTo(HaveOccurred())
				Expect(created).To(BeFalse())
				Expect(u.ID).To(Equal(existing.ID))
				Expect(u.Name).To(Equal("test"))
				Expect(u.Age).To(Equal(30))

				_, err = driver.Authenticate(ctx, "test@example.com", "hunter22")
				Expect(err).To(MatchError(storage.ErrInvalidCredentials))
				_, err = driver.Authenticate(ctx, "test@example.com", "test123")
				Expect(err).NotTo(HaveOccurred())
			})
		})

		Describe("Authenticate", func() {
			BeforeEach(func() {
				mustCreate("sam@example.com")
			})

			It("accepts the right password with any email casing", func() {
				u, err := driver.Authenticate(ctx, "Sam@Example.com", "hunter22")
				Expect(err).NotTo(HaveOccurred())
				Expect(u.Email).To(Equal("sam@example.com"))
			})

			It("rejects a wrong password", func() {
				_, err := driver.Authenticate(ctx, "sam@example.com", "wrong-password")
				Expect(err).To(MatchError(storage.ErrInvalidCredentials))
			})

			It("rejects an unknown email the same way", func() {
				_, err := driver.Authenticate(ctx, "nobody@example.com", "hunter22")
				Expect(err).To(MatchError(storage.ErrInvalidCredentials))
			})
		})

		Describe("UpdateUser", func() {
			It("replaces the profile and keeps the password when none is given", func() {
				u := mustCreate("sam@example.com")

				updated, err := driver.UpdateUser(ctx, dating.ProfileUpdate{
					UserID: u.ID,
					Name:   "Samantha",
					Email:  "samantha@example.com",
					Sex:    "female",
					Age:    30,
				})
				Expect(err).NotTo(HaveOccurred())
				Expect(updated.Name).To(Equal("Samantha"))
				Expect(updated.Age).To(Equal(30))

				_, err = driver.Authenticate(ctx, "samantha@example.com", "hunter22")
				Expect(err).NotTo(HaveOccurred())
				_, err = driver.Authenticate(ctx, "sam@example.com", "hunter22")
				Expect(err).To(MatchError(storage.ErrInvalidCredentials))
			})

			It("changes the password when one is given", func() {
				u := mustCreate("sam@example.com")

				_, err := driver.UpdateUser(ctx, dating.ProfileUpdate{
					UserID: u.ID, Name: "Sam", Email: "sam@example.com", Sex: "female", Age: 29,
					Password: "new-secret",
				})
				Expect(err).NotTo(HaveOccurred())

				_, err = driver.Authenticate(ctx, "sam@example.com", "new-secret")
				Expect(err).NotTo(HaveOccurred())
			})

			It("rejects an email owned by someone else", func() {
				mustCreate("taken@example.com")
				u := mustCreate("sam@example.com")

				_, err := driver.UpdateUser(ctx, dating.ProfileUpdate{
					UserID: u.ID, Name: "Sam", Email: "taken@example.com", Sex: "female", Age: 29,
				})
				Expect(storage.IsConflict(err)).To(BeTrue())
			})

			It("returns NotFoundError for an unknown user", func() {
				_, err := driver.UpdateUser(ctx, dating.ProfileUpdate{
					UserID: 99, Name: "Sam", Email: "sam@example.com", Sex: "female", Age: 29,
				})
				Expect(storage.IsNotFound(err)).To(BeTrue())
			})
		})

		Describe("SetDescription", func() {
			It("stores the description on the user", func() {
				u := mustCreate("sam@example.com")
				Expect(driver.SetDescription(ctx, u.ID, "Coffee first, questions later.")).To(Succeed())

				got, err := driver.GetUser(ctx, u.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(got.Description).To(Equal("Coffee first, questions later."))
			})

			It("returns NotFoundError for an unknown user", func() {
				Expect(storage.IsNotFound(driver.SetDescription(ctx, 77, "x"))).To(BeTrue())
			})
		})

		Describe("chat windows", func() {
			It("creates windows with defaults and lists them newest first", func() {
				u := mustCreate("sam@example.com")

				first, err := driver.CreateChatWindow(ctx, dating.NewChatWindow{UserID: u.ID})
				Expect(err).NotTo(HaveOccurred())
				Expect(first.ID).NotTo(BeEmpty())
				Expect(first.Title).To(Equal(storage.DefaultChatTitle))
				Expect(first.Mode).To(Equal(dating.ModeBasic))

				second, err := driver.CreateChatWindow(ctx, dating.NewChatWindow{
					UserID: u.ID, Title: "Friday", Mode: dating.ModeExpert,
				})
				Expect(err).NotTo(HaveOccurred())

				windows, err := driver.ListChatWindows(ctx, u.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(windows).To(HaveLen(2))
				Expect(windows[0].ID).To(Equal(second.ID))
				Expect(windows[0].Mode).To(Equal(dating.ModeExpert))
				Expect(windows[1].ID).To(Equal(first.ID))
			})

			It("keeps windows of different users apart", func() {
				a := mustCreate("a@example.com")
				b := mustCreate("b@example.com")
				_, err := driver.CreateChatWindow(ctx, dating.NewChatWindow{UserID: a.ID})
				Expect(err).NotTo(HaveOccurred())

				windows, err := driver.ListChatWindows(ctx, b.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(windows).To(BeEmpty())
			})

			It("refuses windows for unknown users", func() {
				_, err := driver.CreateChatWindow(ctx, dating.NewChatWindow{UserID: 12})
				Expect(storage.IsNotFound(err)).To(BeTrue())

				_, err = driver.ListChatWindows(ctx, 12)
				Expect(storage.IsNotFound(err)).To(BeTrue())
			})
		})

		Describe("responses", func() {
			It("stores responses and lists them newest first", func() {
				u := mustCreate("sam@example.com")

				for _, p := range []string{"one", "two", "three"} {
					r := &dating.Response{UserID: u.ID, Prompt: p, Response: "re: " + p}
					Expect(driver.PutResponse(ctx, r)).To(Succeed())
					Expect(r.ID).To(BeNumerically(">", 0))
					Expect(r.CreatedAt.IsZero()).To(BeFalse())
				}

				list, err := driver.ListResponses(ctx, u.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(list).To(HaveLen(3))
				Expect(list[0].Prompt).To(Equal("three"))
				Expect(list[1].Prompt).To(Equal("two"))
				Expect(list[2].Prompt).To(Equal("one"))
				Expect(list[2].Response).To(Equal("re: one"))
			})

			It("lists every user's responses for user id zero", func() {
				a := mustCreate("a@example.com")
				b := mustCreate("b@example.com")
				Expect(driver.PutResponse(ctx, &dating.Response{UserID: a.ID, Prompt: "a", Response: "x"})).To(Succeed())
				Expect(driver.PutResponse(ctx, &dating.Response{UserID: b.ID, Prompt: "b", Response: "y"})).To(Succeed())
				Expect(driver.PutResponse(ctx, &dating.Response{Prompt: "anon", Response: "z"})).To(Succeed())

				all, err := driver.ListResponses(ctx, 0)
				Expect(err).NotTo(HaveOccurred())
				Expect(all).To(HaveLen(3))
				Expect(all[0].Prompt).To(Equal("anon"))
				Expect(all[0].UserID).To(BeZero())

				onlyA, err := driver.ListResponses(ctx, a.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(onlyA).To(HaveLen(1))
				Expect(onlyA[0].Prompt).To(Equal("a"))
			})

			It("links a response to its chat window", func() {
				u := mustCreate("sam@example.com")
				cw, err := driver.CreateChatWindow(ctx, dating.NewChatWindow{UserID: u.ID})
				Expect(err).NotTo(HaveOccurred())

				Expect(driver.PutResponse(ctx, &dating.Response{
					UserID: u.ID, ChatWindowID: cw.ID, Prompt: "hi", Response: "hello",
				})).To(Succeed())

				list, err := driver.ListResponses(ctx, u.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(list).To(HaveLen(1))
				Expect(list[0].ChatWindowID).To(Equal(cw.ID))
			})

			It("rejects unknown users and chat windows", func() {
				err := driver.PutResponse(ctx, &dating.Response{UserID: 5, Prompt: "p", Response: "r"})
				Expect(storage.IsNotFound(err)).To(BeTrue())

				err = driver.PutResponse(ctx, &dating.Response{ChatWindowID: "missing", Prompt: "p", Response: "r"})
				Expect(storage.IsNotFound(err)).To(BeTrue())
			})

			It("returns an empty list when nothing is stored", func() {
				list, err := driver.ListResponses(ctx, 0)
				Expect(err).NotTo(HaveOccurred())
				Expect(list).NotTo(BeNil())
				Expect(list).To(BeEmpty())
			})
		})
	})
}
