package cmdtest

import (
	"context"
	"time"

	. "github.com/onsi/gomega"

	"github.com/papercomputeco/wingman/pkg/client"
	"github.com/papercomputeco/wingman/pkg/dating"
	"github.com/papercomputeco/wingman/pkg/session"
)

// Login registers email on the server and stores it as the logged-in user.
func (e *Env) Login(email string) *session.Session {
	u, err := client.New(e.APITarget).CreateUser(context.Background(), dating.Registration{
		Name: "Sam", Email: email, Sex: "female", Age: 29, Password: "hunter22",
	})
	Expect(err).NotTo(HaveOccurred())

	s := &session.Session{UserID: u.ID, Name: u.Name, Email: u.Email, LoggedInAt: time.Now().UTC()}
	Expect(e.Sessions().Save(s)).To(Succeed())
	return s
}

// Sessions returns the session manager of the scratch directory.
func (e *Env) Sessions() *session.Manager {
	mgr, err := session.NewManager(e.ConfigDir)
	Expect(err).NotTo(HaveOccurred())
	return mgr
}

// Client returns an API client for the server.
func (e *Env) Client() *client.Client {
	return client.New(e.APITarget)
}
