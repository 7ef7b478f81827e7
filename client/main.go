package main

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"frailes/internal/admin"
	"frailes/internal/app"
	"frailes/internal/config"
	"frailes/internal/model"

	"github.com/docopt/docopt-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const usage = `Los Frailes admin tool.

Usage:
    client seed
    client content show
    client content set <field> <value> [--password=<password>]
    client activities list
    client activities add [--service] [--password=<password>]
    client activities delete <id> [--password=<password>]
    client activities guide <id> [--apply] [--password=<password>]
    client allies list
    client allies add [--password=<password>]
    client allies delete <id> [--password=<password>]
    client allies item-add <ally> <name> <price> [--password=<password>]
    client allies item-remove <ally> <item> [--password=<password>]
    client upload <file>
    client reservations list
    client reservations toggle <id> [--password=<password>]
    client improve <text> [--section=<section>]
    client translate <text> <language>
    client watch

Options:
    -h --help                Show this screen.
    --password=<password>    Admin password, defaults to ADMIN_PASSWORD.
    --service                Create a service instead of an activity.
    --apply                  Write the drafted guide to the activity.
    --section=<section>      Page section the text belongs to [default: general].`

func main() {

	opts, err := docopt.ParseArgs(usage, os.Args[1:], "0.1.0")
	if err != nil {
		panic(err)
	}

	cnf := config.LoadConfigOrPanic()
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	site, closeClients, err := app.Bootstrap(ctx, cnf)
	if err != nil {
		panic(err)
	}
	defer closeClients()

	if err := site.Start(ctx); err != nil {
		panic(err)
	}
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), time.Second*10)
		defer flushCancel()
		site.Stop(flushCtx)
	}()

	if err := run(ctx, site, cnf, opts); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, site *app.App, cnf config.Config, opts docopt.Opts) error {
	is := func(cmd string) bool {
		v, _ := opts.Bool(cmd)
		return v
	}
	arg := func(name string) string {
		v, _ := opts.String(name)
		return v
	}

	switch {
	case is("seed"):
		return site.Content.Seed(ctx)
	case is("content") && is("show"):
		return printJson(site.Content.Get())
	case is("content") && is("set"):
		return site.Content.EditText(ctx, unlock(site, cnf, opts), arg("<field>"), arg("<value>")).Wait(ctx)

	case is("activities") && is("list"):
		for _, a := range site.Activities.List() {
			fmt.Printf("%s\t%s\t%s\n", a.Id, a.Type, a.Title)
		}
		return nil
	case is("activities") && is("add"):
		kind := model.ActivityTypeActivity
		if is("--service") {
			kind = model.ActivityTypeService
		}
		id, err := site.Activities.Add(ctx, unlock(site, cnf, opts), kind)
		if err == nil {
			fmt.Println(id)
		}
		return err
	case is("activities") && is("delete"):
		return site.Activities.Delete(ctx, unlock(site, cnf, opts), arg("<id>"))
	case is("activities") && is("guide"):
		return activityGuide(ctx, site, cnf, opts, arg("<id>"))

	case is("allies") && is("list"):
		for _, a := range site.Allies.List() {
			fmt.Printf("%s\t%s\t%s\t%d items\n", a.Id, a.Type, a.Name, len(a.Items))
		}
		return nil
	case is("allies") && is("add"):
		id, err := site.Allies.Add(ctx, unlock(site, cnf, opts))
		if err == nil {
			fmt.Println(id)
		}
		return err
	case is("allies") && is("delete"):
		return site.Allies.Delete(ctx, unlock(site, cnf, opts), arg("<id>"))
	case is("allies") && is("item-add"):
		item, ack := site.Allies.AddItem(ctx, unlock(site, cnf, opts), arg("<ally>"), model.AllyItem{Name: arg("<name>"), Price: arg("<price>")})
		if err := ack.Wait(ctx); err != nil {
			return err
		}
		fmt.Println(item.Id)
		return nil
	case is("allies") && is("item-remove"):
		return site.Allies.RemoveItem(ctx, unlock(site, cnf, opts), arg("<ally>"), arg("<item>")).Wait(ctx)

	case is("upload"):
		return upload(ctx, site, arg("<file>"))

	case is("reservations") && is("list"):
		for _, r := range site.Reservations.List() {
			fmt.Printf("%s\t%s\t%s\t%s\t$%.2f\n", r.Id, r.Status, r.AllyName, r.CustomerName, r.Total)
		}
		return nil
	case is("reservations") && is("toggle"):
		return site.Reservations.ToggleStatus(ctx, unlock(site, cnf, opts), arg("<id>")).Wait(ctx)

	case is("improve"):
		if site.Copywriter == nil {
			return fmt.Errorf("copy drafting is not configured")
		}
		text, err := site.Copywriter.Improve(ctx, arg("<text>"), arg("--section"))
		if err == nil {
			fmt.Println(text)
		}
		return err
	case is("translate"):
		if site.Copywriter == nil {
			return fmt.Errorf("copy drafting is not configured")
		}
		text, err := site.Copywriter.Translate(ctx, arg("<text>"), arg("<language>"))
		if err == nil {
			fmt.Println(text)
		}
		return err

	case is("watch"):
		for e := range site.Watch(ctx) {
			fmt.Printf("%s\t%s\t%v\n", e.Source, e.Type, e.Err)
		}
		return nil
	}
	return nil
}

// unlock returns a visitor capability on a wrong password, so the edit is
// refused by the repository.
func unlock(site *app.App, cnf config.Config, opts docopt.Opts) admin.Capability {
	password, _ := opts.String("--password")
	if password == "" {
		password = cnf.Admin.Password
	}
	capability, err := site.Gate.Unlock(password)
	if err != nil {
		log.Warn().Err(err).Msg("continuing as visitor")
	}
	return capability
}

func activityGuide(ctx context.Context, site *app.App, cnf config.Config, opts docopt.Opts, id string) error {
	if site.Copywriter == nil {
		return fmt.Errorf("copy drafting is not configured")
	}
	activity, err := site.Activities.GetById(id)
	if err != nil {
		return err
	}
	guide, err := site.Copywriter.ActivityGuide(ctx, activity)
	if err != nil {
		return err
	}
	if apply, _ := opts.Bool("--apply"); apply {
		return site.Activities.ApplyGuide(ctx, unlock(site, cnf, opts), id, guide).Wait(ctx)
	}
	return printJson(guide)
}

func upload(ctx context.Context, site *app.App, path string) error {
	if site.Uploader == nil {
		return fmt.Errorf("uploads need FIREBASE_STORAGE_BUCKET")
	}
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	url, err := site.Uploader.Upload(ctx, filepath.Base(path), file, mime.TypeByExtension(filepath.Ext(path)))
	if err != nil {
		return err
	}
	fmt.Println(url)
	return nil
}

func printJson(v interface{}) error {
	jsonData, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return err
	}
	fmt.Println(string(jsonData))
	return nil
}
