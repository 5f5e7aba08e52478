package session_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/wingman/pkg/session"
)

var _ = Describe("Manager", func() {
	var (
		tmpDir string
		m      *session.Manager
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()

		var err error
		m, err = session.NewManager(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	It("stores the session file in the wingman directory", func() {
		Expect(m.Path()).To(Equal(filepath.Join(tmpDir, "session.toml")))
	})

	It("reports ErrNotLoggedIn when nothing is stored", func() {
		_, err := m.Load()
		Expect(err).To(MatchError(session.ErrNotLoggedIn))
	})

	It("round-trips a saved session", func() {
		at := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
		s := &session.Session{UserID: 42, Name: "Alex", Email: "alex@example.com", LoggedInAt: at, ChatWindowID: "cw-1"}
		Expect(m.Save(s)).To(Succeed())

		loaded, err := m.Load()
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.UserID).To(Equal(int64(42)))
		Expect(loaded.Name).To(Equal("Alex"))
		Expect(loaded.Email).To(Equal("alex@example.com"))
		Expect(loaded.LoggedInAt.Equal(at)).To(BeTrue())
		Expect(loaded.ChatWindowID).To(Equal("cw-1"))
	})

	It("treats a session without a user as logged out", func() {
		Expect(os.WriteFile(m.Path(), []byte(`name = "ghost"`), 0o600)).To(Succeed())

		_, err := m.Load()
		Expect(err).To(MatchError(session.ErrNotLoggedIn))
	})

	It("rejects a corrupt session file", func() {
		Expect(os.WriteFile(m.Path(), []byte("user_id = ["), 0o600)).To(Succeed())

		_, err := m.Load()
		Expect(err).To(MatchError(ContainSubstring("parsing session")))
	})

	It("clears the session and tolerates clearing twice", func() {
		Expect(m.Save(&session.Session{UserID: 1})).To(Succeed())
		Expect(m.Clear()).To(Succeed())
		Expect(m.Clear()).To(Succeed())

		_, err := m.Load()
		Expect(err).To(MatchError(session.ErrNotLoggedIn))
	})

	It("creates a missing wingman directory on save", func() {
		nested, err := session.NewManager(filepath.Join(tmpDir, "fresh", ".wingman"))
		Expect(err).NotTo(HaveOccurred())

		Expect(nested.Save(&session.Session{UserID: 7})).To(Succeed())
		info, err := os.Stat(nested.Path())
		Expect(err).NotTo(HaveOccurred())
		Expect(info.Mode().Perm()).To(Equal(os.FileMode(0o600)))
	})

	It("leaves no temporary files behind", func() {
		Expect(m.Save(&session.Session{UserID: 1})).To(Succeed())

		entries, err := os.ReadDir(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(1))
		Expect(entries[0].Name()).To(Equal("session.toml"))
	})

	Describe("Watch", func() {
		var (
			mu   sync.Mutex
			seen []*session.Session
		)

		observed := func() []*session.Session {
			mu.Lock()
			defer mu.Unlock()
			return append([]*session.Session(nil), seen...)
		}

		BeforeEach(func() {
			seen = nil
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)

			go func() {
				done <- m.Watch(ctx, func(s *session.Session) {
					mu.Lock()
					defer mu.Unlock()
					seen = append(seen, s)
				})
			}()

			DeferCleanup(func() {
				cancel()
				Eventually(done).Should(Receive(MatchError(context.Canceled)))
			})

			// Give the watcher time to register before files change.
			time.Sleep(100 * time.Millisecond)
		})

		It("reports logins and logouts", func() {
			Expect(m.Save(&session.Session{UserID: 7, Name: "Sam"})).To(Succeed())

			Eventually(func() bool {
				for _, s := range observed() {
					if s != nil && s.UserID == 7 {
						return true
					}
				}
				return false
			}).Should(BeTrue())

			Expect(m.Clear()).To(Succeed())

			Eventually(func() *session.Session {
				all := observed()
				return all[len(all)-1]
			}).Should(BeNil())
		})

		It("ignores unrelated files", func() {
			Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("version = 0"), 0o600)).To(Succeed())
			Consistently(observed, 200*time.Millisecond).Should(BeEmpty())
		})
	})
})
