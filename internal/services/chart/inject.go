package chart

import (
	"bytes"
	"fmt"
	"regexp"
)

var (
	headOpen    = regexp.MustCompile(`(?i)<head(\s[^>]*)?>`)
	bodyOpen    = regexp.MustCompile(`(?i)<body(\s[^>]*)?>`)
	bodyClose   = regexp.MustCompile(`(?i)</body\s*>`)
	refreshMeta = regexp.MustCompile(`(?i)<meta\s+http-equiv="refresh"[^>]*>\n?`)
)

// InjectMetaRefresh places a refresh directive inside the document head, replacing any
// existing one. Without a head the tag is prepended. Non-positive seconds leave page untouched.
func InjectMetaRefresh(page []byte, seconds int) []byte {
	if seconds <= 0 {
		return page
	}
	tag := fmt.Sprintf(`<meta http-equiv="refresh" content="%d">`, seconds)
	page = refreshMeta.ReplaceAll(page, nil)
	if loc := headOpen.FindIndex(page); loc != nil {
		return splice(page, loc[1], []byte("\n"+tag))
	}
	return append([]byte(tag+"\n"), page...)
}

// InjectBanner places markup right after the opening body tag.
func InjectBanner(page, banner []byte) []byte {
	if len(banner) == 0 {
		return page
	}
	return insertAfter(page, bodyOpen, banner)
}

// InjectLiveReload appends a websocket client that reloads the page when the server
// announces a new artifact for key.
func InjectLiveReload(page []byte, path, key string) []byte {
	script := []byte(fmt.Sprintf(`<script>(function(){var k=%q;var u=(location.protocol==="https:"?"wss://":"ws://")+location.host+%q;function c(){var s=new WebSocket(u);s.onmessage=function(e){try{if(JSON.parse(e.data).key===k){location.reload()}}catch(_){}};s.onclose=function(){setTimeout(c,5000)}}c()})();</script>`+"\n", key, path))
	if loc := bodyClose.FindIndex(page); loc != nil {
		return splice(page, loc[0], script)
	}
	return append(append([]byte{}, page...), script...)
}

func insertAfter(page []byte, re *regexp.Regexp, chunk []byte) []byte {
	loc := re.FindIndex(page)
	if loc == nil {
		return append(append([]byte{}, chunk...), page...)
	}
	return splice(page, loc[1], chunk)
}

func splice(page []byte, at int, chunk []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(len(page) + len(chunk))
	buf.Write(page[:at])
	buf.Write(chunk)
	buf.Write(page[at:])
	return buf.Bytes()
}
