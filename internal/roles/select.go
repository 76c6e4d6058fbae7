package roles

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/samber/lo"

	errUtils "github.com/fitbeard/okta-assume/internal/errors"
)

// AliasResolver maps account ids of an app to human readable aliases.
type AliasResolver interface {
	ResolveAliases(ctx context.Context, app App) (map[string]string, error)
}

// Chooser asks the user for an index in [0, count).
type Chooser interface {
	Choose(label string, count int) (int, error)
}

// Selection is the chosen binding and the app it was granted through.
type Selection struct {
	Binding Binding
	App     App
}

// Selector picks one role out of every binding of every app.
type Selector struct {
	// Aliases is only consulted for the interactive menu. May be nil.
	Aliases AliasResolver
	// Chooser is nil when no terminal is attached.
	Chooser Chooser
	Out     io.Writer
	Logger  *log.Logger
}

type candidate struct {
	binding Binding
	app     App
}

// Select applies, in order: a role name equal to profileAlias, a role ARN
// equal to roleARN, and finally the interactive menu when no role ARN was
// configured. Apps are visited in URL order.
func (s *Selector) Select(ctx context.Context, apps []App, profileAlias, roleARN string) (Selection, error) {
	apps = slices.Clone(apps)
	slices.SortStableFunc(apps, func(a, b App) int { return cmp.Compare(a.URL, b.URL) })

	var candidates []candidate
	for _, app := range apps {
		for _, b := range app.Bindings {
			candidates = append(candidates, candidate{binding: b, app: app})
		}
	}

	if profileAlias != "" {
		named := lo.Filter(candidates, func(c candidate, _ int) bool { return c.binding.Name() == profileAlias })
		distinct := lo.UniqBy(named, func(c candidate) string { return c.binding.RoleARN() })
		if len(distinct) > 1 {
			return Selection{}, fmt.Errorf("%w: '%s' matches %s; use the role ARN option to select one",
				errUtils.ErrAmbiguousRole, profileAlias,
				strings.Join(lo.Map(distinct, func(c candidate, _ int) string { return c.binding.RoleARN() }), ", "))
		}
		if len(distinct) == 1 {
			s.Logger.Debug("Using profile name for role", "profile", profileAlias)
			return Selection{Binding: distinct[0].binding, App: distinct[0].app}, nil
		}
	}

	if roleARN != "" {
		if c, ok := lo.Find(candidates, func(c candidate) bool { return c.binding.RoleARN() == roleARN }); ok {
			return Selection{Binding: c.binding, App: c.app}, nil
		}
		return Selection{}, fmt.Errorf("%w: [%s]", errUtils.ErrRoleNotFound, roleARN)
	}

	return s.prompt(ctx, apps)
}

// Row is one line of the interactive role menu.
type Row struct {
	Label   string
	Account string
	Role    string
	URL     string

	binding Binding
	app     App
}

// Rows builds the sorted menu rows for apps. Accounts without an alias are
// shown by id.
func Rows(apps []App, aliases map[string]map[string]string) []Row {
	var rows []Row
	for _, app := range apps {
		for _, b := range app.Bindings {
			account := b.AccountID()
			if alias, ok := aliases[app.URL][account]; ok && alias != "" {
				account = alias
			}
			rows = append(rows, Row{
				Label:   app.Label,
				Account: account,
				Role:    b.RoleARN(),
				URL:     app.URL,
				binding: b,
				app:     app,
			})
		}
	}

	slices.SortFunc(rows, func(a, b Row) int {
		return cmp.Or(
			cmp.Compare(a.Label, b.Label),
			cmp.Compare(a.Account, b.Account),
			cmp.Compare(a.Role, b.Role),
			cmp.Compare(a.URL, b.URL),
		)
	})
	return rows
}

// RenderRows writes rows grouped under their label, numbered across the
// whole list.
func RenderRows(w io.Writer, rows []Row) {
	longestAlias := lo.Max(lo.Map(rows, func(r Row, _ int) int { return len(r.Account) }))
	longestIndex := len(strconv.Itoa(len(rows)))

	heading := color.New(color.FgGreen)
	index := color.New(color.Bold)
	account := color.New(color.FgCyan)
	role := color.New(color.FgBlue)

	fmt.Fprintln(w)
	index.Fprintln(w, "Please select one of the following:")

	label := ""
	for i, r := range rows {
		if i == 0 || r.Label != label {
			label = r.Label
			fmt.Fprintln(w)
			heading.Fprintf(w, "%s:\n", label)
		}
		index.Fprintf(w, "[%d]", i)
		fmt.Fprint(w, strings.Repeat(" ", longestIndex-len(strconv.Itoa(i))+1))
		account.Fprintf(w, "%-*s", longestAlias, r.Account)
		fmt.Fprint(w, "  ")
		role.Fprintln(w, r.Role)
	}
}

func (s *Selector) prompt(ctx context.Context, apps []App) (Selection, error) {
	if s.Chooser == nil {
		return Selection{}, fmt.Errorf("%w: no role ARN configured and no terminal to select one", errUtils.ErrConfiguration)
	}

	aliases := make(map[string]map[string]string, len(apps))
	if s.Aliases != nil {
		for _, app := range apps {
			s.Logger.Debug("Getting aliases", "app", app.URL)
			table, err := s.Aliases.ResolveAliases(ctx, app)
			if err != nil {
				return Selection{}, err
			}
			if table == nil {
				s.Logger.Debug("No labels found, using account ids", "app", app.URL)
			}
			aliases[app.URL] = table
		}
	}

	rows := Rows(apps, aliases)
	if len(rows) == 0 {
		return Selection{}, errUtils.ErrNoRolesFound
	}
	RenderRows(s.Out, rows)

	choice, err := s.Chooser.Choose("Enter your selection", len(rows))
	if err != nil {
		return Selection{}, err
	}
	if choice < 0 || choice >= len(rows) {
		return Selection{}, fmt.Errorf("%w: selection %d is out of range", errUtils.ErrValidation, choice)
	}

	s.Logger.Debug("Selected role", "index", choice, "role", rows[choice].Role)
	return Selection{Binding: rows[choice].binding, App: rows[choice].app}, nil
}
