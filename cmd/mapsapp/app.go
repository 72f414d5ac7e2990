// ABOUTME: Interactive client wiring the session and services to a command loop
// ABOUTME: Parses one command per line, runs it as the current actor, prints results

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/2389/mapsapp/internal/admin"
	"github.com/2389/mapsapp/internal/appstate"
	"github.com/2389/mapsapp/internal/auth"
	"github.com/2389/mapsapp/internal/config"
	"github.com/2389/mapsapp/internal/mapview"
	"github.com/2389/mapsapp/internal/personal"
	"github.com/2389/mapsapp/internal/places"
	"github.com/2389/mapsapp/internal/session"
	"github.com/2389/mapsapp/internal/store"
)

var errNotLoggedIn = errors.New("not logged in: use login <role> [name] or guest")

type appOptions struct {
	Store   backend
	Map     config.MapConfig
	Logger  *slog.Logger
	NoGeo   bool
	Out     io.Writer
	Version string
}

// App is the single controller owning the state and the session.
type App struct {
	out    io.Writer
	logger *slog.Logger
	mapCfg config.MapConfig

	state    *appstate.State
	session  *session.Manager
	places   *places.Service
	personal *personal.Service
	users    *admin.UserService

	renderer *mapview.LogRenderer
	locator  mapview.Locator
	position *store.Waypoint
}

func newApp(ctx context.Context, opts appOptions) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	st, err := appstate.Load(ctx, opts.Store, logger)
	if err != nil {
		return nil, fmt.Errorf("loading state: %w", err)
	}

	renderer := mapview.NewLogRenderer(logger)
	a := &App{
		out:      opts.Out,
		logger:   logger.With("component", "client"),
		mapCfg:   opts.Map,
		state:    st,
		session:  session.NewManager(st),
		places:   places.NewService(st, renderer, opts.Store),
		personal: personal.NewService(st, renderer),
		users:    admin.NewUserService(st, opts.Store),
		renderer: renderer,
	}
	if !opts.NoGeo {
		a.locator = &mapview.StaticLocator{Position: store.Waypoint{Lat: opts.Map.CenterLat, Lng: opts.Map.CenterLng}}
	}
	return a, nil
}

// login runs the login form. With role set it logs in once and returns any
// error; otherwise it prompts until a login succeeds.
func (a *App) login(ctx context.Context, reader *bufio.Reader, role, name string) error {
	if role != "" {
		if err := a.doLogin(ctx, role, name); err != nil {
			return err
		}
		return nil
	}

	for {
		role = a.ask(reader, "Role (guest/user/owner/moderator/admin)", string(auth.RoleGuest))
		name = ""
		if role != string(auth.RoleGuest) {
			name = a.ask(reader, "Name (optional)", "")
		}
		err := a.doLogin(ctx, role, name)
		if err == nil {
			return nil
		}
		a.fail(err)
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (a *App) doLogin(ctx context.Context, role, name string) error {
	actor, err := a.session.Login(ctx, name, role)
	if err != nil && !errors.Is(err, store.ErrStore) {
		return err
	}
	if err != nil {
		a.fail(err)
	}

	color.New(color.FgGreen).Fprintf(a.out, "Welcome, %s (%s)\n", actor.Name, actor.Role)
	a.places.Render()
	a.locate(ctx)
	return nil
}

func (a *App) locate(ctx context.Context) {
	err := mapview.OnUserLocated(ctx, a.locator, a.mapCfg.GeolocationTimeout, func(p store.Waypoint) {
		a.position = &p
		fmt.Fprintf(a.out, "You are here: %.5f,%.5f\n", p.Lat, p.Lng)
	})
	if err != nil {
		a.position = nil
		color.New(color.FgYellow).Fprintf(a.out, "Location unavailable: %v\n", err)
	}
}

// loop reads commands until quit or EOF.
func (a *App) loop(ctx context.Context, reader *bufio.Reader) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(a.out, "mapsapp> ")
		line, err := reader.ReadString('\n')
		if strings.TrimSpace(line) != "" {
			if a.exec(ctx, line) {
				return nil
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(a.out)
				return nil
			}
			return err
		}
	}
}

// exec runs one command line. It returns true when the client should exit.
func (a *App) exec(ctx context.Context, line string) bool {
	args := splitArgs(strings.TrimSpace(line))
	if len(args) == 0 {
		return false
	}
	cmd, rest := strings.ToLower(args[0]), args[1:]

	var err error
	switch cmd {
	case "quit", "exit":
		return true
	case "help", "?":
		a.printHelp()
	case "login":
		err = a.cmdLogin(ctx, rest)
	case "guest":
		err = a.doLogin(ctx, string(auth.RoleGuest), "")
	case "logout":
		a.session.Logout()
		fmt.Fprintln(a.out, "Logged out")
	case "whoami":
		err = a.cmdWhoami()
	case "list", "ls":
		err = a.cmdList(rest)
	case "search":
		err = a.cmdSearch(rest)
	case "categories":
		fmt.Fprintln(a.out, strings.Join(a.places.Categories(), ", "))
	case "show":
		err = a.cmdShow(rest)
	case "add":
		err = a.cmdAdd(ctx, rest)
	case "edit":
		err = a.cmdEdit(ctx, rest)
	case "delete":
		err = a.cmdDelete(ctx, rest)
	case "review":
		err = a.cmdReview(ctx, rest)
	case "unreview":
		err = a.cmdUnreview(ctx, rest)
	case "reviews":
		err = a.cmdReviews()
	case "fav":
		err = a.cmdFav(ctx, rest)
	case "favs":
		err = a.cmdFavs()
	case "route", "routes":
		err = a.cmdRoute(ctx, rest)
	case "goto":
		err = a.cmdGoto(ctx, rest)
	case "locate":
		a.locate(ctx)
	case "users":
		err = a.cmdUsers()
	case "admin":
		err = a.cmdAdmin(ctx, rest)
	case "audit":
		err = a.cmdAudit(ctx, rest)
	default:
		err = fmt.Errorf("unknown command %q (try help)", cmd)
	}

	if err != nil {
		a.logger.Debug("command failed", "command", cmd, "error", err)
		a.fail(err)
	}
	return false
}

func (a *App) actor() (auth.Actor, error) {
	actor, ok := a.session.Current()
	if !ok {
		return auth.Actor{}, errNotLoggedIn
	}
	return actor, nil
}

func (a *App) fail(err error) {
	color.New(color.FgRed).Fprintf(a.out, "Error: %v\n", err)
}

func (a *App) ok(format string, args ...any) {
	color.New(color.FgGreen).Fprintf(a.out, format+"\n", args...)
}

func (a *App) ask(reader *bufio.Reader, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Fprintf(a.out, "%s [%s]: ", question, defaultVal)
	} else {
		fmt.Fprintf(a.out, "%s: ", question)
	}

	input, err := reader.ReadString('\n')
	if err != nil && strings.TrimSpace(input) == "" {
		fmt.Fprintln(a.out)
		return defaultVal
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return defaultVal
	}
	return input
}

func (a *App) printHelp() {
	yellow := color.New(color.FgYellow)

	yellow.Fprintln(a.out, "Session:")
	fmt.Fprintln(a.out, "  login <role> [name]          Log in as guest, user, owner, moderator or admin")
	fmt.Fprintln(a.out, "  guest                        Continue as guest")
	fmt.Fprintln(a.out, "  logout | whoami | quit")
	yellow.Fprintln(a.out, "Locations:")
	fmt.Fprintln(a.out, "  list [category]              List locations")
	fmt.Fprintln(a.out, "  search <text> [category=C] [within=METERS]")
	fmt.Fprintln(a.out, "  categories | show <id>")
	fmt.Fprintln(a.out, "  add name=N lat=L lng=L [category= address= hours= desc= owner=]")
	fmt.Fprintln(a.out, "  edit <id> [name= desc= hours= status=open|closed]")
	fmt.Fprintln(a.out, "  delete <id>")
	yellow.Fprintln(a.out, "Reviews:")
	fmt.Fprintln(a.out, "  review <id> <rating> <text>  Add a review")
	fmt.Fprintln(a.out, "  unreview <id> <reviewId>     Delete a review")
	fmt.Fprintln(a.out, "  reviews                      All reviews (moderators)")
	yellow.Fprintln(a.out, "Personal:")
	fmt.Fprintln(a.out, "  fav <id> | favs")
	fmt.Fprintln(a.out, "  route save <name> <lat,lng>... | route list | route show <id> | route delete <id>")
	fmt.Fprintln(a.out, "  goto <id>                    Route from your position | locate")
	yellow.Fprintln(a.out, "Admin:")
	fmt.Fprintln(a.out, "  users | audit [limit] [user=<id>] [action=<action>] [target=<id>]")
	fmt.Fprintln(a.out, "  admin block <userId> | admin unblock <userId> | admin setrole <userId> <role>")
}

func (a *App) cmdLogin(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return appstate.Invalid("usage: login <role> [name]")
	}
	return a.doLogin(ctx, args[0], strings.Join(args[1:], " "))
}

func (a *App) cmdWhoami() error {
	actor, err := a.actor()
	if err != nil {
		return err
	}
	caps, err := auth.CapabilitiesFor(actor.Role)
	if err != nil {
		return err
	}

	var granted []string
	for _, c := range auth.AllCapabilities {
		if caps[c] {
			granted = append(granted, string(c))
		}
	}
	fmt.Fprintf(a.out, "%s (%s) role=%s\n", actor.Name, actor.UserID, actor.Role)
	fmt.Fprintf(a.out, "  capabilities: %s\n", strings.Join(granted, ", "))
	return nil
}

func (a *App) printLocations(locs []*store.Location) {
	if len(locs) == 0 {
		fmt.Fprintln(a.out, "No locations found")
		return
	}

	actor, _ := a.session.Current()
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tSTATUS\tREVIEWS\t")
	for _, l := range locs {
		mark := ""
		if a.personal.IsFavorite(actor, l.ID) {
			mark = " *"
		}
		fmt.Fprintf(w, "%d\t%s%s\t%s\t%s\t%d\t\n", l.ID, l.Name, mark, l.Category, l.Status, len(l.Reviews))
	}
	_ = w.Flush()
}

func (a *App) cmdList(args []string) error {
	f := places.Filter{}
	if len(args) > 0 {
		f.Category = strings.Join(args, " ")
	}
	a.printLocations(a.places.Search(f))
	return nil
}

func (a *App) cmdSearch(args []string) error {
	var words, options []string
	for _, arg := range args {
		if strings.Contains(arg, "=") {
			options = append(options, arg)
		} else {
			words = append(words, arg)
		}
	}
	opts, err := parseOptions(options)
	if err != nil {
		return err
	}

	f := places.Filter{Query: strings.Join(words, " "), Category: opts["category"]}
	if within, ok := opts["within"]; ok {
		meters, err := strconv.ParseFloat(within, 64)
		if err != nil || meters <= 0 {
			return appstate.Invalid("within must be a positive number of meters, got %q", within)
		}
		if a.position == nil {
			return mapview.ErrGeolocationUnavailable
		}
		f.MaxDistance = meters
		f.From = a.position
	}

	a.printLocations(a.places.Search(f))
	return nil
}

func (a *App) cmdShow(args []string) error {
	if len(args) != 1 {
		return appstate.Invalid("usage: show <id>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	l, err := a.places.Get(id)
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan, color.Bold)
	gray := color.New(color.FgHiBlack)

	cyan.Fprintf(a.out, "%s", l.Name)
	gray.Fprintf(a.out, " #%d [%s]\n", l.ID, l.Status)
	fmt.Fprintf(a.out, "  Category: %s\n", l.Category)
	fmt.Fprintf(a.out, "  Address:  %s\n", l.Address)
	fmt.Fprintf(a.out, "  Hours:    %s\n", l.Hours)
	fmt.Fprintf(a.out, "  Position: %.5f,%.5f\n", l.Lat, l.Lng)
	if a.position != nil {
		d := mapview.Distance(*a.position, store.Waypoint{Lat: l.Lat, Lng: l.Lng})
		fmt.Fprintf(a.out, "  Distance: %.0f m\n", d)
	}
	if l.Desc != "" {
		fmt.Fprintf(a.out, "  %s\n", l.Desc)
	}

	if len(l.Reviews) == 0 {
		gray.Fprintln(a.out, "  No reviews yet")
	}
	for _, r := range l.Reviews {
		fmt.Fprintf(a.out, "  %s %s: %s", strings.Repeat("*", r.Rating), r.Author, r.Text)
		gray.Fprintf(a.out, " (%s)\n", r.ID)
	}

	if actor, ok := a.session.Current(); ok {
		var hints []string
		if places.CanEdit(actor, l) {
			hints = append(hints, "edit")
		}
		if places.CanDeleteReviews(actor, l) {
			hints = append(hints, "unreview")
		}
		if len(hints) > 0 {
			gray.Fprintf(a.out, "  You can: %s\n", strings.Join(hints, ", "))
		}
	}
	return nil
}

func (a *App) cmdAdd(ctx context.Context, args []string) error {
	actor, err := a.actor()
	if err != nil {
		return err
	}
	opts, err := parseOptions(args)
	if err != nil {
		return err
	}

	in := places.LocationInput{
		Name:     opts["name"],
		Category: opts["category"],
		Address:  opts["address"],
		Hours:    opts["hours"],
		Desc:     opts["desc"],
		OwnerID:  opts["owner"],
	}
	if in.Lat, err = parseCoord(opts, "lat"); err != nil {
		return err
	}
	if in.Lng, err = parseCoord(opts, "lng"); err != nil {
		return err
	}

	l, err := a.places.AddLocation(ctx, actor, in)
	if l != nil && err == nil {
		a.ok("Added location %d: %s", l.ID, l.Name)
	}
	return err
}

func parseCoord(opts map[string]string, key string) (float64, error) {
	raw, ok := opts[key]
	if !ok {
		return 0, appstate.Invalid("%s is required", key)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, appstate.Invalid("bad %s %q", key, raw)
	}
	return v, nil
}

func (a *App) cmdEdit(ctx context.Context, args []string) error {
	actor, err := a.actor()
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return appstate.Invalid("usage: edit <id> key=value...")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	opts, err := parseOptions(args[1:])
	if err != nil {
		return err
	}

	var patch places.Patch
	for k, v := range opts {
		switch k {
		case "name":
			patch.Name = &v
		case "desc":
			patch.Desc = &v
		case "hours":
			patch.Hours = &v
		case "status":
			s := store.LocationStatus(v)
			patch.Status = &s
		default:
			return appstate.Invalid("field %q cannot be edited", k)
		}
	}

	l, err := a.places.EditLocation(ctx, actor, id, patch)
	if err == nil {
		a.ok("Updated %s", l.Name)
	}
	return err
}

func (a *App) cmdDelete(ctx context.Context, args []string) error {
	actor, err := a.actor()
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return appstate.Invalid("usage: delete <id>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := a.places.DeleteLocation(ctx, actor, id); err != nil {
		return err
	}
	a.ok("Deleted location %d", id)
	return nil
}

func (a *App) cmdReview(ctx context.Context, args []string) error {
	actor, err := a.actor()
	if err != nil {
		return err
	}
	if len(args) < 3 {
		return appstate.Invalid("usage: review <id> <rating 1-5> <text>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	rating, err := strconv.Atoi(args[1])
	if err != nil {
		return appstate.Invalid("rating must be a number, got %q", args[1])
	}

	r, err := a.places.AddReview(ctx, actor, id, "", rating, strings.Join(args[2:], " "))
	if err == nil {
		a.ok("Review %s added", r.ID)
	}
	return err
}

func (a *App) cmdUnreview(ctx context.Context, args []string) error {
	actor, err := a.actor()
	if err != nil {
		return err
	}
	if len(args) != 2 {
		return appstate.Invalid("usage: unreview <id> <reviewId>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := a.places.DeleteReview(ctx, actor, id, args[1]); err != nil {
		return err
	}
	a.ok("Review %s deleted", args[1])
	return nil
}

func (a *App) cmdReviews() error {
	actor, err := a.actor()
	if err != nil {
		return err
	}
	entries, err := a.places.AllReviews(actor)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "No reviews")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LOCATION\tREVIEW\tAUTHOR\tRATING\tTEXT\t")
	for _, e := range entries {
		fmt.Fprintf(w, "%d %s\t%s\t%s\t%d\t%s\t\n", e.LocationID, e.LocationName, e.Review.ID, e.Review.Author, e.Review.Rating, e.Review.Text)
	}
	return w.Flush()
}

func (a *App) cmdFav(ctx context.Context, args []string) error {
	actor, err := a.actor()
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return appstate.Invalid("usage: fav <id>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	added, err := a.personal.ToggleFavorite(ctx, actor, id)
	if err != nil && !errors.Is(err, store.ErrStore) {
		return err
	}
	if added {
		a.ok("Added %d to favorites", id)
	} else {
		a.ok("Removed %d from favorites", id)
	}
	return err
}

func (a *App) cmdFavs() error {
	actor, err := a.actor()
	if err != nil {
		return err
	}
	a.printLocations(a.personal.Favorites(actor))
	return nil
}

func (a *App) cmdRoute(ctx context.Context, args []string) error {
	actor, err := a.actor()
	if err != nil {
		return err
	}

	sub := "list"
	if len(args) > 0 {
		sub, args = strings.ToLower(args[0]), args[1:]
	}

	switch sub {
	case "list":
		routes := a.personal.PersonalRoutes(actor)
		if len(routes) == 0 {
			fmt.Fprintln(a.out, "No saved routes")
			return nil
		}
		w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tWAYPOINTS\t")
		for _, r := range routes {
			fmt.Fprintf(w, "%s\t%s\t%d\t\n", r.ID, r.Name, len(r.Waypoints))
		}
		return w.Flush()

	case "save":
		if len(args) < 1 {
			return appstate.Invalid("usage: route save <name> <lat,lng>...")
		}
		var wps []store.Waypoint
		for _, s := range args[1:] {
			wp, err := parseWaypoint(s)
			if err != nil {
				return appstate.Invalid("%v", err)
			}
			wps = append(wps, wp)
		}
		r, err := a.personal.SavePersonalRoute(ctx, actor, args[0], wps)
		if err == nil {
			a.ok("Saved route %q (%s)", r.Name, r.ID)
		}
		return err

	case "show":
		if len(args) != 1 {
			return appstate.Invalid("usage: route show <id>")
		}
		r, err := a.personal.LoadRoute(actor, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s:", r.Name)
		for _, wp := range r.Waypoints {
			fmt.Fprintf(a.out, " %.5f,%.5f", wp.Lat, wp.Lng)
		}
		fmt.Fprintln(a.out)
		return nil

	case "delete":
		if len(args) != 1 {
			return appstate.Invalid("usage: route delete <id>")
		}
		if err := a.personal.DeletePersonalRoute(ctx, actor, args[0]); err != nil {
			return err
		}
		a.ok("Deleted route %s", args[0])
		return nil

	default:
		return appstate.Invalid("unknown route command %q", sub)
	}
}

func (a *App) cmdGoto(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return appstate.Invalid("usage: goto <id>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	l, err := a.places.Get(id)
	if err != nil {
		return err
	}

	route, err := mapview.RouteTo(ctx, a.locator, a.mapCfg.GeolocationTimeout, a.renderer, store.Waypoint{Lat: l.Lat, Lng: l.Lng})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Route to %s: %.0f m\n", l.Name, mapview.Distance(route[0], route[len(route)-1]))
	return nil
}

func (a *App) cmdUsers() error {
	actor, err := a.actor()
	if err != nil {
		return err
	}
	users, err := a.users.ListUsers(actor)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tROLE\tBLOCKED\t")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t\n", u.ID, u.Name, u.Role, u.Blocked)
	}
	return w.Flush()
}

func (a *App) cmdAdmin(ctx context.Context, args []string) error {
	actor, err := a.actor()
	if err != nil {
		return err
	}
	msg, err := a.users.ExecCommand(ctx, actor, strings.Join(args, " "))
	if err != nil {
		return err
	}
	// The admin may have changed their own role
	a.session.Refresh()
	a.ok("%s", msg)
	return nil
}

func (a *App) cmdAudit(ctx context.Context, args []string) error {
	actor, err := a.actor()
	if err != nil {
		return err
	}
	f := store.AuditFilter{Limit: 20}
	if len(args) > 0 && !strings.Contains(args[0], "=") {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return appstate.Invalid("limit must be a positive number, got %q", args[0])
		}
		f.Limit = n
		args = args[1:]
	}
	opts, err := parseOptions(args)
	if err != nil {
		return appstate.Invalid("%v", err)
	}
	for k, v := range opts {
		switch k {
		case "user":
			f.ActorID = v
		case "target":
			f.TargetID = v
		case "action":
			if f.Action, err = store.ParseAuditAction(v); err != nil {
				return appstate.Invalid("%v", err)
			}
		default:
			return appstate.Invalid("unknown audit filter %q", k)
		}
	}

	entries, err := a.users.AuditLog(ctx, actor, f)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tACTOR\tACTION\tTARGET\t")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s %s\t\n", e.Timestamp.Format("2006-01-02 15:04:05"), e.ActorID, e.Action, e.TargetType, e.TargetID)
	}
	return w.Flush()
}
