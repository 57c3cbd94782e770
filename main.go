package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/alecthomas/kingpin"
	accesslog "github.com/codeskyblue/go-accesslog"
	"github.com/codeskyblue/androidres/arsc"
	"github.com/codeskyblue/androidres/res"
	"github.com/goji/httpauth"
	"github.com/gorilla/handlers"
	"github.com/pkg/errors"
)

type Configure struct {
	Profile    string
	Assets     []string
	Qualifiers string
	Density    int
	Strict     bool
	Package    string

	Addr     string
	HttpAuth string
	Cert     string
	Key      string
	Cors     bool
	XProxy   bool
}

var gcfg = Configure{}

var (
	cmdDump    = kingpin.Command("dump", "list every resource with its value")
	cmdValue   = kingpin.Command("value", "resolve resource values")
	cmdBag     = kingpin.Command("bag", "show a style, array or attr with its parents merged")
	cmdName    = kingpin.Command("name", "print the name of resource ids")
	cmdID      = kingpin.Command("id", "print the id of resource names")
	cmdStyle   = kingpin.Command("style", "apply a theme and read attributes through it")
	cmdLayout  = kingpin.Command("layout", "resolve the attributes of a compiled layout")
	cmdLocales = kingpin.Command("locales", "list the locales resources exist for")
	cmdServe   = kingpin.Command("serve", "start the HTTP inspector")

	valueNames  = cmdValue.Arg("resource", "resource names or ids").Required().Strings()
	valueRaw    = cmdValue.Flag("raw", "do not follow references").Bool()
	bagName     = cmdBag.Arg("resource", "bag name or id").Required().String()
	nameIDs     = cmdName.Arg("id", "resource ids").Required().Strings()
	idNames     = cmdID.Arg("name", "resource names").Required().Strings()
	idType      = cmdID.Flag("type", "default resource type").String()
	styleTheme  = cmdStyle.Arg("theme", "theme style name or id").Required().String()
	styleAttrs  = cmdStyle.Arg("attr", "attribute names or ids").Required().Strings()
	layoutApk   = cmdLayout.Arg("apk", "apk holding the layout").Required().ExistingFile()
	layoutName  = cmdLayout.Arg("layout", "layout file, like res/layout/main.xml").String()
	layoutTheme = cmdLayout.Flag("theme", "theme to apply instead of the application theme").String()
)

func parseFlags() {
	kingpin.HelpFlag.Short('h')
	kingpin.Flag("profile", "YAML device and application profile").Short('p').StringVar(&gcfg.Profile)
	kingpin.Flag("asset", "apk or resources.arsc to load, lowest priority first").Short('f').StringsVar(&gcfg.Assets)
	kingpin.Flag("config", "configuration qualifiers (ex: fr-rFR-land-xhdpi)").Short('c').StringVar(&gcfg.Qualifiers)
	kingpin.Flag("density", "screen density in dpi").IntVar(&gcfg.Density)
	kingpin.Flag("strict", "fail on unresolvable references instead of logging them").BoolVar(&gcfg.Strict)
	kingpin.Flag("package", "default package for resource names").StringVar(&gcfg.Package)

	cmdServe.Flag("addr", "listen address").Short('a').Default(":8000").StringVar(&gcfg.Addr)
	cmdServe.Flag("cert", "tls cert.pem path").StringVar(&gcfg.Cert)
	cmdServe.Flag("key", "tls key.pem path").StringVar(&gcfg.Key)
	cmdServe.Flag("cors", "enable cross-site HTTP request").BoolVar(&gcfg.Cors)
	cmdServe.Flag("httpauth", "HTTP basic auth (ex: user:pass)").Default("").StringVar(&gcfg.HttpAuth)
	cmdServe.Flag("xproxy", "Used when behide proxy like nginx").BoolVar(&gcfg.XProxy)
}

// buildProfile merges the profile file with the command line flags.
func buildProfile() (*Profile, error) {
	p := &Profile{}
	if gcfg.Profile != "" {
		var err error
		if p, err = LoadProfile(gcfg.Profile); err != nil {
			return nil, err
		}
	}
	p.Assets = append(p.Assets, gcfg.Assets...)
	if gcfg.Qualifiers != "" {
		p.Qualifiers = gcfg.Qualifiers
	}
	if gcfg.Density != 0 {
		p.Density = uint16(gcfg.Density)
	}
	if gcfg.Strict {
		p.Strict = true
	}
	if gcfg.Package != "" {
		p.Package = gcfg.Package
	}
	if len(p.Assets) == 0 {
		return nil, errors.New("no assets, use --asset or --profile")
	}
	if p.Package == "" {
		for _, path := range p.Assets {
			if !isZip(path) {
				continue
			}
			if apk, err := NewApk(path); err == nil {
				p.Package = apk.PackageName()
			}
		}
	}
	return p, p.Build()
}

func loadAssetManager(p *Profile) (*res.AssetManager, error) {
	am, err := res.NewAssetManagerFor(p, openAsset)
	if err != nil {
		return nil, err
	}
	am.SetStrict(p.Strict)
	if p.MaxReferenceDepth > 0 {
		am.MaxReferenceDepth = p.MaxReferenceDepth
	}
	return am, nil
}

func main() {
	parseFlags()
	cmd := kingpin.Parse()

	p, err := buildProfile()
	if err != nil {
		log.Fatal(err)
	}
	am, err := loadAssetManager(p)
	if err != nil {
		log.Fatal(err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()
	switch cmd {
	case cmdDump.FullCommand():
		err = dump(w, am, p)
	case cmdValue.FullCommand():
		err = printValues(w, am, *valueNames, !*valueRaw)
	case cmdBag.FullCommand():
		err = printBag(w, am, *bagName)
	case cmdName.FullCommand():
		err = printNames(w, am, *nameIDs)
	case cmdID.FullCommand():
		err = printIDs(w, am, *idNames, *idType)
	case cmdStyle.FullCommand():
		err = printStyle(w, am, *styleTheme, *styleAttrs)
	case cmdLayout.FullCommand():
		err = printLayout(w, am, *layoutApk, *layoutName, *layoutTheme)
	case cmdLocales.FullCommand():
		for _, l := range am.GetLocales() {
			fmt.Fprintln(w, l)
		}
	case cmdServe.FullCommand():
		w.Flush()
		err = serve(am)
	}
	if err != nil {
		w.Flush()
		log.Fatal(err)
	}
}

func serve(am *res.AssetManager) error {
	var hdlr http.Handler = NewResourceServer(am)
	hdlr = accesslog.NewLoggingHandler(hdlr, httpLogger{})

	// HTTP Basic Authentication
	userpass := strings.SplitN(gcfg.HttpAuth, ":", 2)
	if len(userpass) == 2 {
		user, pass := userpass[0], userpass[1]
		hdlr = httpauth.SimpleBasicAuth(user, pass)(hdlr)
	}
	// CORS
	if gcfg.Cors {
		hdlr = handlers.CORS()(hdlr)
	}
	if gcfg.XProxy {
		hdlr = handlers.ProxyHeaders(hdlr)
	}

	http.Handle("/", hdlr)

	log.Printf("Listening on addr: %s\n", strconv.Quote(gcfg.Addr))

	if gcfg.Key != "" && gcfg.Cert != "" {
		return http.ListenAndServeTLS(gcfg.Addr, gcfg.Cert, gcfg.Key, nil)
	}
	return http.ListenAndServe(gcfg.Addr, nil)
}

type httpLogger struct{}

func (l httpLogger) Log(record accesslog.LogRecord) {
	log.Printf("%s - %s %d %s", record.Ip, record.Method, record.Status, record.Uri)
}

func dump(w *tabwriter.Writer, am *res.AssetManager, p *Profile) error {
	for _, path := range p.Assets {
		if st, err := os.Stat(path); err == nil {
			fmt.Fprintf(w, "# %s\t%s\n", path, formatSize(st.Size()))
		}
	}
	fmt.Fprintf(w, "# configuration %q\n", am.Configuration().String())
	for _, info := range am.Resources() {
		var value string
		if info.Bag {
			value = "(bag)"
		} else if v, err := am.GetResourceValue(info.ID, 0, true); err == nil {
			value = v.CoerceToString()
		} else {
			value = "(" + err.Error() + ")"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", info.ID, info.Name, value, variants(info.Configs))
	}
	return nil
}

func variants(configs []string) string {
	names := make([]string, len(configs))
	for i, c := range configs {
		if c == "" {
			c = "default"
		}
		names[i] = c
	}
	return "[" + strings.Join(names, " ") + "]"
}

func printValues(w *tabwriter.Writer, am *res.AssetManager, names []string, resolve bool) error {
	for _, name := range names {
		id, err := lookupID(am, name, "")
		if err != nil {
			return err
		}
		v, err := am.GetResourceValue(id, 0, resolve)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", id, name, v.Type, v.CoerceToString())
	}
	return nil
}

func printBag(w *tabwriter.Writer, am *res.AssetManager, name string) error {
	id, err := lookupID(am, name, "style")
	if err != nil {
		return err
	}
	bag, err := am.GetBag(id)
	if err != nil {
		return err
	}
	if bag.Parent != 0 {
		fmt.Fprintf(w, "# parent %s\n", displayName(am, bag.Parent))
	}
	for _, e := range bag.Entries {
		fmt.Fprintf(w, "%s\t%s\t%s\n", displayName(am, e.Key), e.Value.CoerceToString(), e.Resolved.CoerceToString())
	}
	return nil
}

// displayName returns the name of id, or id itself for keys without one.
func displayName(am *res.AssetManager, id arsc.ResId) string {
	if n, err := am.GetResourceName(id); err == nil {
		return n.String()
	}
	if i := arsc.ArrayIndex(id); i >= 0 {
		return "[" + strconv.Itoa(i) + "]"
	}
	return id.String()
}

func printNames(w *tabwriter.Writer, am *res.AssetManager, ids []string) error {
	for _, s := range ids {
		id := parseResID(s)
		if id == 0 {
			return errors.Errorf("%q is not a resource id", s)
		}
		n, err := am.GetResourceName(id)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\n", id, n)
	}
	return nil
}

func printIDs(w *tabwriter.Writer, am *res.AssetManager, names []string, defType string) error {
	for _, name := range names {
		id, err := am.GetResourceIdentifier(name, defType, "")
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\n", name, id)
	}
	return nil
}

func printStyle(w *tabwriter.Writer, am *res.AssetManager, theme string, attrs []string) error {
	id, err := lookupID(am, theme, "style")
	if err != nil {
		return err
	}
	t := am.NewTheme()
	if err := t.ApplyStyle(id, true); err != nil {
		return err
	}
	for _, a := range attrs {
		attr, err := lookupID(am, a, "attr")
		if err != nil {
			return err
		}
		v, err := t.GetAttribute(attr)
		if err != nil {
			fmt.Fprintf(w, "%s\t(%v)\n", a, err)
			continue
		}
		resolved, err := t.ResolveAttributeReference(v)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", a, v.CoerceToString(), resolved.CoerceToString())
	}
	return nil
}

func printLayout(w *tabwriter.Writer, am *res.AssetManager, apkPath, layout, themeName string) error {
	apk, err := NewApk(apkPath)
	if err != nil {
		return err
	}
	if layout == "" {
		layouts, err := apk.Layouts()
		if err != nil {
			return err
		}
		for _, l := range layouts {
			fmt.Fprintln(w, l)
		}
		return nil
	}

	theme := am.NewTheme()
	themeID := apk.Theme()
	if themeName != "" {
		if themeID, err = lookupID(am, themeName, "style"); err != nil {
			return err
		}
	}
	if themeID != 0 {
		if err := theme.ApplyStyle(themeID, true); err != nil {
			return err
		}
	}

	elements, err := apk.Layout(layout)
	if err != nil {
		return err
	}
	for _, el := range elements {
		attrs := el.Attributes(am, apk.PackageName())
		ids := make([]arsc.ResId, len(attrs.Items))
		for i, a := range attrs.Items {
			ids[i] = a.ID
		}
		ta, err := am.AttrsToTypedArray(attrs, ids, 0, theme, 0)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s<%s>\n", strings.Repeat("  ", el.Depth), el.Name)
		for _, i := range ta.Indices {
			fmt.Fprintf(w, "%s  %s\t%s\n", strings.Repeat("  ", el.Depth), displayName(am, ids[i]), ta.Values[i].CoerceToString())
		}
	}
	return nil
}
