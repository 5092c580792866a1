package directory

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/claimsense/internal/core/domain"
)

//go:embed users.yaml
var embeddedUsers []byte

var mobilePattern = regexp.MustCompile(`^[0-9]{10}$`)

type fixture struct {
	Users []domain.UserRecord `yaml:"users"`
}

// Directory is an immutable in-memory user table.
type Directory struct {
	order    []string
	byMobile map[string]domain.UserRecord
}

// Load reads the directory from path, or the built-in demo users when path is empty.
func Load(path string) (*Directory, error) {
	data := embeddedUsers
	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read directory %s: %w", path, err)
		}
		data = raw
	}
	return Parse(data)
}

func Parse(data []byte) (*Directory, error) {
	var f fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse directory: %w", err)
	}
	if len(f.Users) == 0 {
		return nil, errors.New("parse directory: no users")
	}

	d := &Directory{byMobile: make(map[string]domain.UserRecord, len(f.Users))}
	for i, u := range f.Users {
		if err := validate(u); err != nil {
			return nil, fmt.Errorf("directory user %d: %w", i, err)
		}
		if _, dup := d.byMobile[u.MobileNumber]; dup {
			return nil, fmt.Errorf("directory user %d: duplicate mobile number %s", i, u.MobileNumber)
		}
		d.byMobile[u.MobileNumber] = u
		d.order = append(d.order, u.MobileNumber)
	}
	return d, nil
}

func validate(u domain.UserRecord) error {
	switch {
	case !mobilePattern.MatchString(u.MobileNumber):
		return fmt.Errorf("mobile number %q must be 10 digits", u.MobileNumber)
	case strings.TrimSpace(u.FullName) == "":
		return errors.New("full name is empty")
	case !u.Policy.Type.Valid():
		return fmt.Errorf("unknown policy type %q", u.Policy.Type)
	case u.Policy.CoverageLimit < 0 || u.Policy.AmountAlreadyClaimed < 0:
		return errors.New("policy amounts must not be negative")
	case u.Policy.AmountAlreadyClaimed > u.Policy.CoverageLimit:
		return errors.New("amount already claimed exceeds coverage limit")
	}
	return nil
}

func (d *Directory) Lookup(_ context.Context, mobileNumber string) (*domain.UserRecord, error) {
	u, ok := d.byMobile[strings.TrimSpace(mobileNumber)]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "lookup user", fmt.Errorf("mobile number %s", mobileNumber))
	}
	return &u, nil
}

func (d *Directory) List(context.Context) ([]domain.UserRecord, error) {
	out := make([]domain.UserRecord, 0, len(d.order))
	for _, m := range d.order {
		out = append(out, d.byMobile[m])
	}
	return out, nil
}
