// Package seed loads demo users, schedules and teams from a YAML document.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"sigs.k8s.io/yaml"

	"github.com/workflex/workflex/internal/auth"
	"github.com/workflex/workflex/internal/permission"
	"github.com/workflex/workflex/internal/schedule"
	"github.com/workflex/workflex/internal/team"
)

// Document is the seed file layout.
type Document struct {
	Users []User `json:"users"`
	Teams []Team `json:"teams"`
}

// User is an account with its weekly schedule.
type User struct {
	Email     string           `json:"email"`
	Password  string           `json:"password"`
	Name      string           `json:"name"`
	AvatarURL *string          `json:"avatarUrl,omitempty"`
	Schedule  []schedule.Block `json:"schedule"`
}

// Team is a team owned by one seeded user with other seeded users as members.
type Team struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Owner       string   `json:"owner"`
	Members     []Member `json:"members"`
}

// Member references a seeded user by e-mail.
type Member struct {
	Email string          `json:"email"`
	Role  permission.Role `json:"role"`
}

// Parse decodes and checks a seed document. Unknown fields are rejected.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.UnmarshalStrict(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding seed document: %w", err)
	}
	if err := doc.validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (d *Document) validate() error {
	users := make(map[string]bool, len(d.Users))
	for i, u := range d.Users {
		email := auth.NormalizeEmail(u.Email)
		if email == "" || u.Password == "" || strings.TrimSpace(u.Name) == "" {
			return fmt.Errorf("user %d: email, password and name are required", i)
		}
		if users[email] {
			return fmt.Errorf("user %s: declared twice", email)
		}
		users[email] = true
		for j, b := range u.Schedule {
			if err := b.Validate(); err != nil {
				return fmt.Errorf("user %s block %d: %w", email, j, err)
			}
		}
	}

	for _, t := range d.Teams {
		if strings.TrimSpace(t.Name) == "" {
			return errors.New("team name is required")
		}
		owner := auth.NormalizeEmail(t.Owner)
		if !users[owner] {
			return fmt.Errorf("team %s: owner %q is not a seeded user", t.Name, t.Owner)
		}
		seen := map[string]bool{owner: true}
		for _, m := range t.Members {
			email := auth.NormalizeEmail(m.Email)
			if !users[email] {
				return fmt.Errorf("team %s: member %q is not a seeded user", t.Name, m.Email)
			}
			if seen[email] {
				return fmt.Errorf("team %s: %s listed twice", t.Name, email)
			}
			seen[email] = true
			if !m.Role.Valid() || m.Role == permission.RoleOwner {
				return fmt.Errorf("team %s: %s: %w %q", t.Name, email, team.ErrInvalidRole, m.Role)
			}
		}
	}
	return nil
}

// Registrar creates accounts with hashed passwords.
type Registrar interface {
	Register(ctx context.Context, email, password, name string) (*auth.User, error)
}

// Loader writes a Document through the application's repositories.
type Loader struct {
	accounts  Registrar
	users     auth.UserRepository
	teams     team.Repository
	schedules schedule.Repository
}

// NewLoader creates a new Loader.
func NewLoader(accounts Registrar, users auth.UserRepository, teams team.Repository, schedules schedule.Repository) *Loader {
	return &Loader{accounts: accounts, users: users, teams: teams, schedules: schedules}
}

// Result counts what a Load created.
type Result struct {
	Users  int
	Blocks int
	Teams  int
}

// Load creates the document's users, blocks and teams. Users that already
// exist keep their schedule, and a team is skipped when its owner already
// belongs to a team of the same name, so a document can be loaded repeatedly.
func (l *Loader) Load(ctx context.Context, doc *Document) (*Result, error) {
	res := &Result{}
	byEmail := make(map[string]*auth.User, len(doc.Users))

	for _, su := range doc.Users {
		u, created, err := l.ensureUser(ctx, su)
		if err != nil {
			return res, err
		}
		byEmail[u.Email] = u
		if !created {
			continue
		}
		res.Users++

		for _, b := range su.Schedule {
			if err := l.schedules.Create(ctx, &schedule.Entry{UserID: u.ID, Block: b}); err != nil {
				return res, fmt.Errorf("creating block for %s: %w", u.Email, err)
			}
			res.Blocks++
		}
	}

	for _, st := range doc.Teams {
		owner := byEmail[auth.NormalizeEmail(st.Owner)]
		exists, err := l.ownsTeamNamed(ctx, owner, st.Name)
		if err != nil {
			return res, err
		}
		if exists {
			continue
		}

		t := &team.Team{
			Name:        st.Name,
			Description: st.Description,
			OwnerID:     owner.ID,
			Members:     []team.Member{{UserID: owner.ID, Name: owner.Name, Avatar: owner.AvatarURL, Role: permission.RoleOwner}},
		}
		for _, m := range st.Members {
			u := byEmail[auth.NormalizeEmail(m.Email)]
			t.Members = append(t.Members, team.Member{UserID: u.ID, Name: u.Name, Avatar: u.AvatarURL, Role: m.Role})
		}
		if err := l.teams.Create(ctx, t); err != nil {
			return res, fmt.Errorf("creating team %s: %w", st.Name, err)
		}
		res.Teams++
	}

	slog.Info("seed loaded", "users", res.Users, "blocks", res.Blocks, "teams", res.Teams)
	return res, nil
}

func (l *Loader) ensureUser(ctx context.Context, su User) (*auth.User, bool, error) {
	u, err := l.accounts.Register(ctx, su.Email, su.Password, su.Name)
	if err == nil {
		if su.AvatarURL != nil {
			u.AvatarURL = su.AvatarURL
		}
		return u, true, nil
	}
	if !errors.Is(err, auth.ErrDuplicateEmail) {
		return nil, false, fmt.Errorf("registering %s: %w", su.Email, err)
	}

	u, err = l.users.GetByEmail(ctx, auth.NormalizeEmail(su.Email))
	if err != nil {
		return nil, false, fmt.Errorf("loading existing user %s: %w", su.Email, err)
	}
	return u, false, nil
}

func (l *Loader) ownsTeamNamed(ctx context.Context, owner *auth.User, name string) (bool, error) {
	teams, err := l.teams.ListByUser(ctx, owner.ID)
	if err != nil {
		return false, fmt.Errorf("listing teams of %s: %w", owner.Email, err)
	}
	for _, t := range teams {
		if t.OwnerID == owner.ID && t.Name == name {
			return true, nil
		}
	}
	return false, nil
}
