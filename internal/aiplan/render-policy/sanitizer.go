package policy

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// ExportPolicy - белый список для повторной очистки разметки, построенной рендером, перед передачей в песочницу.
// Разрешает только элементы и атрибуты, которые рендер выводит сам.
var ExportPolicy *bluemonday.Policy = newExportPolicy()

func newExportPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()

	hexColorRegexp := regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
	alignRegexp := regexp.MustCompile(`^(left|center|right|justify)$`)
	languageClassRegexp := regexp.MustCompile(`^language-[A-Za-z0-9_-]+$`)
	languageRegexp := regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	spanRegexp := regexp.MustCompile(`^[0-9]{1,2}$`)

	// Адреса уже прошли ClassifyURL: остаются только URLPlaceholder и абсолютные http(s)-адреса.
	urlRegexp := regexp.MustCompile(`(?i)^(?:#|https?://\S+)$`)

	p.AllowElements("p", "h1", "h2", "h3", "h4", "h5", "h6",
		"ul", "ol", "li", "pre", "code", "blockquote", "hr", "br",
		"table", "tbody", "tr", "th", "td",
		"strong", "em", "u", "s", "sup", "sub", "span", "mark", "a", "img", "input")

	p.AllowStyles("text-align").Matching(alignRegexp).OnElements("p")
	p.AllowStyles("color").Matching(hexColorRegexp).OnElements("span")
	p.AllowStyles("background-color").Matching(hexColorRegexp).OnElements("mark")

	p.AllowAttrs("start").Matching(bluemonday.Integer).OnElements("ol")
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^task-list$`)).OnElements("ul")
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^task-item$`)).OnElements("li")
	p.AllowAttrs("type").Matching(regexp.MustCompile(`^checkbox$`)).OnElements("input")
	p.AllowAttrs("disabled", "checked").OnElements("input")

	p.AllowAttrs("class").Matching(languageClassRegexp).OnElements("code")
	p.AllowAttrs("data-language").Matching(languageRegexp).OnElements("code")

	p.AllowAttrs("colspan", "rowspan").Matching(spanRegexp).OnElements("th", "td")

	p.AllowAttrs("href").Matching(urlRegexp).OnElements("a")
	p.AllowAttrs("rel").Matching(regexp.MustCompile(`^noopener noreferrer nofollow$`)).OnElements("a")
	p.AllowAttrs("referrerpolicy").Matching(regexp.MustCompile(`^no-referrer$`)).OnElements("a")

	p.AllowAttrs("src").Matching(urlRegexp).OnElements("img")
	p.AllowAttrs("alt", "title").OnElements("img")

	return p
}
