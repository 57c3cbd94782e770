package main

import (
	"io/ioutil"
	"log"
	"strings"
	"testing"

	"github.com/codeskyblue/androidres/arsc"
	"github.com/codeskyblue/androidres/arsc/arsctest"
	"github.com/codeskyblue/androidres/res"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const layoutXML = `<?xml version="1.0" encoding="utf-8"?>
<LinearLayout xmlns:android="http://schemas.android.com/apk/res/android"
    xmlns:app="http://schemas.android.com/apk/res-auto"
    android:orientation="vertical">
    <TextView style="@style/Title" android:text="@string/hello" app:accent="#ff00ff00" tools="x"/>
    <View android:unknown="1"/>
</LinearLayout>`

func TestParseElements(t *testing.T) {
	elements, err := parseElements(strings.NewReader(layoutXML))
	require.NoError(t, err)
	require.Len(t, elements, 3)
	assert.Equal(t, "LinearLayout", elements[0].Name)
	assert.Equal(t, 0, elements[0].Depth)
	assert.Equal(t, "TextView", elements[1].Name)
	assert.Equal(t, 1, elements[1].Depth)
	assert.Equal(t, 1, elements[2].Depth)
}

func TestElementAttributes(t *testing.T) {
	framework := arsctest.NewTable()
	fp := framework.Package(arsc.SysPackageID, "android")
	text := fp.SetBag("attr/text", "", 0, arsctest.Item(arsc.AttrType, arsctest.Int(int32(arsc.FormatString))))
	orientation := fp.SetBag("attr/orientation", "", 0, arsctest.Item(arsc.AttrType, arsctest.Int(int32(arsc.FormatEnum))))

	app := arsctest.NewTable()
	ap := app.Package(arsc.AppPackageID, "com.example.app")
	accent := ap.SetBag("attr/accent", "", 0, arsctest.Item(arsc.AttrType, arsctest.Int(int32(arsc.FormatColor))))

	am := res.NewAssetManager()
	am.SetLogger(log.New(ioutil.Discard, "", 0))
	_, err := am.AddTable("framework-res.apk", framework.Bytes())
	require.NoError(t, err)
	_, err = am.AddTable("app.apk", app.Bytes())
	require.NoError(t, err)

	elements, err := parseElements(strings.NewReader(layoutXML))
	require.NoError(t, err)

	attrs := elements[0].Attributes(am, "com.example.app")
	assert.Equal(t, []res.Attribute{{ID: orientation, Value: "vertical"}}, attrs.Items)

	attrs = elements[1].Attributes(am, "com.example.app")
	assert.Equal(t, "@style/Title", attrs.Style)
	assert.Equal(t, []res.Attribute{
		{ID: text, Value: "@string/hello"},
		{ID: accent, Value: "#ff00ff00"},
	}, attrs.Items)

	assert.Empty(t, elements[2].Attributes(am, "com.example.app").Items)
}
