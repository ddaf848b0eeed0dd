package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"houseoflove/internal/auth"
)

const defaultBaseURL = "http://localhost:8080"

func main() {
	global := flag.NewFlagSet("houseoflove", flag.ExitOnError)
	baseURL := global.String("api", defaultBaseURL, "API base URL")
	statePath := global.String("session", defaultStatePath(), "session file path")
	profileFlag := global.String("profile", "", "profile id (defaults to the one in the session file)")
	if err := global.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	args := global.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	st, err := loadState(*statePath)
	if err != nil {
		log.Fatalf("load session: %v", err)
	}
	if *profileFlag != "" {
		st.Profile = *profileFlag
	}

	a := &api{
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: *baseURL,
		profile: st.Profile,
	}
	sess := auth.NewSession(remoteProvider{api: a})
	a.token = sess.Token
	if st.Token != "" && st.User != nil {
		sess.Restore(st.User, st.Token)
	}
	// the session file follows every sign-in and sign-out
	sess.OnSessionChange(func(u *auth.User) {
		st.User = u
		st.Token = sess.Token()
		if err := saveState(*statePath, st); err != nil {
			log.Printf("save session: %v", err)
		}
	})

	ctx := context.Background()
	cmd := args[0]
	sub := ""
	if len(args) > 1 {
		sub = args[1]
	}
	rest := []string{}
	if len(args) > 2 {
		rest = args[2:]
	}

	switch cmd {
	case "auth":
		handleAuth(ctx, sess, sub, rest)
	case "catalog":
		handleCatalog(ctx, a, sub, rest)
	case "cart":
		handleCart(ctx, a, sub, rest)
	case "favorites":
		handleFavorites(ctx, a, sub, rest)
	case "book":
		handleBook(ctx, a, sub, rest)
	case "preview":
		handlePreview(ctx, a, sub, rest)
	case "checkout":
		handleCheckout(ctx, a, args[1:])
	case "orders":
		handleOrders(ctx, a, sess)
	case "sync":
		handleSync(*baseURL, st.Profile, sub)
	default:
		printUsage()
		os.Exit(1)
	}
}

func handleAuth(ctx context.Context, sess *auth.Session, sub string, args []string) {
	switch sub {
	case "login":
		fs := flag.NewFlagSet("auth login", flag.ExitOnError)
		email := fs.String("email", "", "email address")
		password := fs.String("password", "", "password")
		_ = fs.Parse(args)

		if *email == "" || *password == "" {
			log.Fatal("email and password are required")
		}
		if err := sess.Login(ctx, *email, *password); err != nil {
			log.Fatalf("login failed: %v", err)
		}
		fmt.Printf("✅ signed in as %s\n", sess.Current().Email)
	case "register":
		fs := flag.NewFlagSet("auth register", flag.ExitOnError)
		email := fs.String("email", "", "email address")
		password := fs.String("password", "", "password")
		confirm := fs.String("confirm", "", "repeat the password")
		_ = fs.Parse(args)

		if *email == "" || *password == "" {
			log.Fatal("email and password are required")
		}
		if err := sess.Register(ctx, *email, *password, *confirm); err != nil {
			log.Fatalf("register failed: %v", err)
		}
		fmt.Println("✅ registered, now run: houseoflove auth login")
	case "logout":
		if err := sess.Logout(ctx); err != nil {
			log.Printf("server logout failed (signed out locally): %v", err)
		}
		fmt.Println("✅ signed out")
	case "whoami":
		if u := sess.Current(); u != nil {
			fmt.Println(u.Email)
			return
		}
		fmt.Println("not signed in")
	default:
		log.Fatal("usage: houseoflove auth <login|register|logout|whoami>")
	}
}

func handleCatalog(ctx context.Context, a *api, sub string, args []string) {
	var out any
	switch sub {
	case "products":
		fs := flag.NewFlagSet("catalog products", flag.ExitOnError)
		category := fs.String("category", "", "product category slug")
		search := fs.String("search", "", "name contains")
		_ = fs.Parse(args)
		q := url.Values{}
		if *category != "" {
			q.Set("category", *category)
		}
		if *search != "" {
			q.Set("search", *search)
		}
		path := "/catalog/products"
		if len(q) > 0 {
			path += "?" + q.Encode()
		}
		if err := a.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
			log.Fatalf("products failed: %v", err)
		}
	case "books":
		fs := flag.NewFlagSet("catalog books", flag.ExitOnError)
		category := fs.String("category", "", "category slug")
		_ = fs.Parse(args)
		path := "/catalog/books"
		if *category != "" {
			path += "/" + url.PathEscape(*category)
		}
		if err := a.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
			log.Fatalf("books failed: %v", err)
		}
	default:
		log.Fatal("usage: houseoflove catalog <products|books>")
	}
	printJSON(out)
}

func handleCart(ctx context.Context, a *api, sub string, args []string) {
	var out any
	var err error
	switch sub {
	case "list", "":
		err = a.doJSON(ctx, http.MethodGet, "/cart", nil, &out)
	case "add":
		fs := flag.NewFlagSet("cart add", flag.ExitOnError)
		id := fs.String("product", "", "product id")
		qty := fs.Int("qty", 1, "quantity")
		_ = fs.Parse(args)
		if *id == "" {
			log.Fatal("product id is required")
		}
		err = a.doJSON(ctx, http.MethodPost, "/cart", map[string]any{"product_id": *id, "quantity": *qty}, &out)
	case "update":
		fs := flag.NewFlagSet("cart update", flag.ExitOnError)
		id := fs.String("id", "", "cart line id")
		qty := fs.Int("qty", 1, "new quantity, 0 removes")
		_ = fs.Parse(args)
		if *id == "" {
			log.Fatal("line id is required")
		}
		err = a.doJSON(ctx, http.MethodPut, "/cart/"+url.PathEscape(*id), map[string]int{"quantity": *qty}, &out)
	case "remove":
		fs := flag.NewFlagSet("cart remove", flag.ExitOnError)
		id := fs.String("id", "", "cart line id")
		_ = fs.Parse(args)
		if *id == "" {
			log.Fatal("line id is required")
		}
		err = a.doJSON(ctx, http.MethodDelete, "/cart/"+url.PathEscape(*id), nil, &out)
	case "clear":
		err = a.doJSON(ctx, http.MethodDelete, "/cart", nil, &out)
	default:
		log.Fatal("usage: houseoflove cart <list|add|update|remove|clear>")
	}
	if err != nil {
		log.Fatalf("cart %s failed: %v", sub, err)
	}
	printJSON(out)
}

func handleFavorites(ctx context.Context, a *api, sub string, args []string) {
	var out any
	var err error
	switch sub {
	case "list", "":
		err = a.doJSON(ctx, http.MethodGet, "/favorites", nil, &out)
	case "toggle":
		fs := flag.NewFlagSet("favorites toggle", flag.ExitOnError)
		id := fs.String("product", "", "product id")
		_ = fs.Parse(args)
		if *id == "" {
			log.Fatal("product id is required")
		}
		err = a.doJSON(ctx, http.MethodPost, "/favorites/toggle", map[string]string{"product_id": *id}, &out)
	default:
		log.Fatal("usage: houseoflove favorites <list|toggle>")
	}
	if err != nil {
		log.Fatalf("favorites %s failed: %v", sub, err)
	}
	printJSON(out)
}

// bookFlags are shared by every book subcommand.
type bookFlags struct {
	fs       *flag.FlagSet
	category *string
	typ      *string
	page     *int
}

func newBookFlags(name string) bookFlags {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	return bookFlags{
		fs:       fs,
		category: fs.String("category", "", "category slug, e.g. love"),
		typ:      fs.String("type", "", "book type slug, e.g. male-to-female"),
		page:     fs.Int("page", 0, "page 0-7"),
	}
}

func (b bookFlags) base(prefix string) string {
	if *b.category == "" || *b.typ == "" {
		log.Fatal("-category and -type are required")
	}
	return prefix + "/" + url.PathEscape(*b.category) + "/" + url.PathEscape(*b.typ)
}

func (b bookFlags) pagePath(prefix, leaf string) string {
	return b.base(prefix) + "/pages/" + strconv.Itoa(*b.page) + "/" + leaf
}

func handleBook(ctx context.Context, a *api, sub string, args []string) {
	bf := newBookFlags("book " + sub)
	text := bf.fs.String("text", "", "page text")
	x := bf.fs.Float64("x", 50, "horizontal position, percent")
	y := bf.fs.Float64("y", 50, "vertical position, percent")
	font := bf.fs.String("font", "", "font token")
	size := bf.fs.String("size", "", "size token")
	weight := bf.fs.String("weight", "", "weight token")
	color := bf.fs.String("color", "", "#rrggbb")
	delta := bf.fs.Int("delta", 1, "pages to move")
	_ = bf.fs.Parse(args)

	var out any
	var err error
	switch sub {
	case "show":
		err = a.doJSON(ctx, http.MethodGet, bf.base("/books"), nil, &out)
	case "text":
		err = a.doJSON(ctx, http.MethodPut, bf.pagePath("/books", "text"), map[string]string{"text": *text}, &out)
	case "position":
		err = a.doJSON(ctx, http.MethodPut, bf.pagePath("/books", "position"), map[string]float64{"x": *x, "y": *y}, &out)
	case "style":
		patch := map[string]string{}
		for k, v := range map[string]string{"font": *font, "size": *size, "weight": *weight, "color": *color} {
			if v != "" {
				patch[k] = v
			}
		}
		err = a.doJSON(ctx, http.MethodPatch, bf.pagePath("/books", "style"), patch, &out)
	case "next", "prev":
		d := *delta
		if sub == "prev" {
			d = -d
		}
		err = a.doJSON(ctx, http.MethodPost, bf.base("/books")+"/navigate", map[string]int{"delta": d}, &out)
	case "reset":
		err = a.doJSON(ctx, http.MethodDelete, bf.base("/books"), nil, &out)
	default:
		log.Fatal("usage: houseoflove book <show|text|position|style|next|prev|reset> -category C -type T [-page N]")
	}
	if err != nil {
		log.Fatalf("book %s failed: %v", sub, err)
	}
	printJSON(out)
}

func handlePreview(ctx context.Context, a *api, sub string, args []string) {
	bf := newBookFlags("preview " + sub)
	_ = bf.fs.Parse(args)

	var out any
	var err error
	switch sub {
	case "show":
		err = a.doJSON(ctx, http.MethodGet, bf.base("/preview"), nil, &out)
	case "flip":
		err = a.doJSON(ctx, http.MethodPost, bf.base("/preview")+"/flip", nil, &out)
	case "add":
		err = a.doJSON(ctx, http.MethodPost, bf.base("/preview")+"/cart", nil, &out)
	default:
		log.Fatal("usage: houseoflove preview <show|flip|add> -category C -type T")
	}
	if err != nil {
		log.Fatalf("preview %s failed: %v", sub, err)
	}
	printJSON(out)
}

func handleCheckout(ctx context.Context, a *api, args []string) {
	fs := flag.NewFlagSet("checkout", flag.ExitOnError)
	name := fs.String("name", "", "customer name")
	email := fs.String("email", "", "customer email")
	_ = fs.Parse(args)
	if *name == "" || *email == "" {
		log.Fatal("name and email are required")
	}

	var out map[string]any
	if err := a.doJSON(ctx, http.MethodPost, "/checkout", map[string]string{"name": *name, "email": *email}, &out); err != nil {
		log.Fatalf("checkout failed: %v", err)
	}
	if msg, ok := out["notification_error"]; ok {
		fmt.Printf("⚠️  order placed, but notifications failed: %v\n", msg)
	}
	printJSON(out["order"])
}

func handleOrders(ctx context.Context, a *api, sess *auth.Session) {
	if sess.Current() == nil {
		log.Fatal("not signed in, run: houseoflove auth login")
	}
	var out any
	if err := a.doJSON(ctx, http.MethodGet, "/users/orders", nil, &out); err != nil {
		log.Fatalf("orders failed: %v", err)
	}
	printJSON(out)
}

func handleSync(baseURL, profileID, sub string) {
	if sub != "listen" {
		log.Fatal("usage: houseoflove sync listen")
	}
	wsURL, err := websocketURL(baseURL, "/ws", profileID)
	if err != nil {
		log.Fatalf("invalid base url: %v", err)
	}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		log.Fatalf("connect %s: %v", wsURL, err)
	}
	defer conn.Close()

	fmt.Printf("listening for events of profile %s (ctrl-c to stop)\n", profileID)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			log.Fatalf("read: %v", err)
		}
		fmt.Println(string(msg))
	}
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("json: %v", err)
	}
	fmt.Println(string(b))
}

func printUsage() {
	fmt.Println("houseoflove [-api URL] [-profile ID] <command> [subcommand] [flags]")
	fmt.Println("commands:")
	fmt.Println("  auth login|register|logout|whoami")
	fmt.Println("  catalog products|books")
	fmt.Println("  cart list|add|update|remove|clear")
	fmt.Println("  favorites list|toggle")
	fmt.Println("  book show|text|position|style|next|prev|reset")
	fmt.Println("  preview show|flip|add")
	fmt.Println("  checkout -name N -email E")
	fmt.Println("  orders")
	fmt.Println("  sync listen")
}
