package main

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/codeskyblue/androidres/arsc"
	"github.com/codeskyblue/androidres/res"
	"github.com/pkg/errors"
	"github.com/shogo82148/androidbinary"
)

const (
	androidNS  = "http://schemas.android.com/apk/res/android"
	resAutoNS  = "http://schemas.android.com/apk/res-auto"
	resNSPrefx = "http://schemas.android.com/apk/res/"
)

type Manifest struct {
	Package     string `xml:"package,attr"`
	VersionCode string `xml:"http://schemas.android.com/apk/res/android versionCode,attr"`
	VersionName string `xml:"http://schemas.android.com/apk/res/android versionName,attr"`
	App         struct {
		Label string `xml:"http://schemas.android.com/apk/res/android label,attr"`
		Icon  string `xml:"http://schemas.android.com/apk/res/android icon,attr"`
		Theme string `xml:"http://schemas.android.com/apk/res/android theme,attr"`
	} `xml:"application"`
}

type Apk struct {
	filename string
	manifest Manifest
}

func NewApk(filename string) (*Apk, error) {
	apk := &Apk{
		filename: filename,
	}
	if err := apk.parseXML("AndroidManifest.xml", func(r io.Reader) error {
		return xml.NewDecoder(r).Decode(&apk.manifest)
	}); err != nil {
		return nil, errors.Wrap(err, "parse-manifest")
	}
	return apk, nil
}

func (k *Apk) Manifest() Manifest {
	return k.manifest
}

func (k *Apk) PackageName() string {
	return k.manifest.Package
}

// Theme returns the id of the application theme, 0 if none is set.
func (k *Apk) Theme() arsc.ResId {
	return parseResID(k.manifest.App.Theme)
}

// Layouts lists the compiled layout files in the apk.
func (k *Apk) Layouts() ([]string, error) {
	names, err := ListZip(k.filename, "res")
	if err != nil {
		return nil, err
	}
	var ret []string
	for _, name := range names {
		if strings.HasPrefix(name, "res/layout") && strings.HasSuffix(name, ".xml") {
			ret = append(ret, name)
		}
	}
	return ret, nil
}

// Layout decodes the compiled XML file name into its elements.
func (k *Apk) Layout(name string) (elements []*Element, err error) {
	err = k.parseXML(name, func(r io.Reader) error {
		elements, err = parseElements(r)
		return err
	})
	return
}

func (k *Apk) parseXML(name string, decode func(io.Reader) error) error {
	xmlData, err := k.readZipFile(name)
	if err != nil {
		return errors.Wrapf(err, "read %s", name)
	}
	xmlfile, err := androidbinary.NewXMLFile(bytes.NewReader(xmlData))
	if err != nil {
		return errors.Wrap(err, "parse-axml")
	}
	return decode(xmlfile.Reader())
}

func (k *Apk) readZipFile(name string) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := ExtractFromZip(k.filename, name, buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Element is one start tag of a layout.
type Element struct {
	Name  string
	Depth int
	Attrs []xml.Attr
}

func parseElements(r io.Reader) ([]*Element, error) {
	dec := xml.NewDecoder(r)
	var elements []*Element
	depth := 0
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return elements, nil
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			elements = append(elements, &Element{Name: t.Name.Local, Depth: depth, Attrs: t.Attr})
			depth++
		case xml.EndElement:
			depth--
		}
	}
}

// Attributes maps the element's attributes to attribute ids. Attributes
// in the android namespace are looked up in the framework, the others in
// pkg. Attributes without a known id are dropped.
func (e *Element) Attributes(am *res.AssetManager, pkg string) *res.Attributes {
	attrs := &res.Attributes{}
	for _, a := range e.Attrs {
		space := a.Name.Space
		switch {
		case space == "" && a.Name.Local == "style":
			attrs.Style = a.Value
			continue
		case space == "" || space == "xmlns":
			continue
		case space == androidNS:
			space = "android"
		case space == resAutoNS:
			space = pkg
		case strings.HasPrefix(space, resNSPrefx):
			space = strings.TrimPrefix(space, resNSPrefx)
		}
		id, err := am.GetResourceIdentifier(a.Name.Local, "attr", space)
		if err != nil {
			continue
		}
		attrs.Items = append(attrs.Items, res.Attribute{ID: id, Value: a.Value})
	}
	return attrs
}
