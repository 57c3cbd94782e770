package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/codeskyblue/androidres/arsc"
	"github.com/codeskyblue/androidres/res"
)

func formatSize(size int64) string {
	switch {
	case size > 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(size)/1024/1024)
	case size > 1024:
		return fmt.Sprintf("%.1f KB", float64(size)/1024)
	default:
		return strconv.Itoa(int(size)) + " B"
	}
}

func getRealIP(req *http.Request) string {
	xip := req.Header.Get("X-Real-IP")
	if xip == "" {
		xip = strings.Split(req.RemoteAddr, ":")[0]
	}
	return xip
}

// parseResID parses "0x7f010000" and "@0x7f010000". It returns 0 for
// anything else.
func parseResID(s string) arsc.ResId {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "@"), "?")
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return 0
	}
	n, err := strconv.ParseUint(s[2:], 16, 32)
	if err != nil {
		return 0
	}
	return arsc.ResId(n)
}

// lookupID accepts either a hex resource id or a resource name.
func lookupID(am *res.AssetManager, s, defType string) (arsc.ResId, error) {
	if id := parseResID(s); id != 0 {
		return id, nil
	}
	return am.GetResourceIdentifier(s, defType, "")
}

func SublimeContains(s, substr string) bool {
	rs, rsubstr := []rune(s), []rune(substr)
	if len(rsubstr) > len(rs) {
		return false
	}

	var ok = true
	var i, j = 0, 0
	for ; i < len(rsubstr); i++ {
		found := -1
		for ; j < len(rs); j++ {
			if rsubstr[i] == rs[j] {
				found = j
				break
			}
		}
		if found == -1 {
			ok = false
			break
		}
		j += 1
	}
	return ok
}
