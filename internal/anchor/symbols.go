package anchor

import (
	"fmt"
	"regexp"
	"strings"
)

// Symbol anchors locate a declaration by name using lightweight per-language
// regular expressions. They are shallow on purpose: good enough to find the
// signature line of a function or method so the scope extractor can take over
// from there. Receivers, modifiers and generics are skipped, not understood.
//
//	go      func Name(   | func (r *T) Name(   | func Name[T any](
//	js, ts  function Name(   | async Name(a, b) {   | Name(a) {   (class methods)
//	java    public static int Name(
//	cs      public override Task<int> Name(
//	kotlin  fun Name(   | override suspend fun Name(
//	py      def Name(   | async def Name(
var symbolTemplates = map[string]string{
	"go": `(?m)^[\t ]*func[\t ]+(?:\([^)]*\)[\t ]*)?%s[\t ]*[\[(]`,
	"js": `(?m)^[\t ]*(?:export[\t ]+)?(?:default[\t ]+)?(?:static[\t ]+)?(?:async[\t ]+)?(?:function\*?[\t ]+)?%s[\t ]*\([^)\n]*\)[\t ]*\{`,
	"java": `(?m)^[\t ]*(?:(?:public|protected|private|static|final|abstract|synchronized|native)[\t ]+)*` +
		`(?:[A-Za-z_][\w<>\[\],.?]*[\t ]+)?%s[\t ]*\(`,
	"cs": `(?m)^[\t ]*(?:(?:public|protected|private|internal|static|virtual|override|abstract|sealed|async|new|partial)[\t ]+)*` +
		`(?:[A-Za-z_][\w<>\[\],.?]*[\t ]+)?%s[\t ]*(?:<[^>\n]*>)?[\t ]*\(`,
	"kotlin": `(?m)^[\t ]*(?:(?:public|protected|private|internal|override|open|suspend|inline|operator)[\t ]+)*fun[\t ]+(?:<[^>\n]*>[\t ]*)?%s[\t ]*\(`,
	"py":     `(?m)^[\t ]*(?:async[\t ]+)?def[\t ]+%s[\t ]*\(`,
}

// normalizeLang folds aliases onto the template keys.
func normalizeLang(lang string) string {
	switch l := strings.ToLower(strings.TrimSpace(lang)); l {
	case "ts", "tsx", "jsx", "javascript", "typescript", "mjs", "cjs":
		return "js"
	case "kt":
		return "kotlin"
	case "c#", "csharp":
		return "cs"
	case "python":
		return "py"
	case "golang":
		return "go"
	default:
		return l
	}
}

// symbolPattern compiles the declaration regex for name in lang.
func symbolPattern(lang, name string) (*regexp.Regexp, error) {
	tmpl, ok := symbolTemplates[normalizeLang(lang)]
	if !ok {
		return nil, fmt.Errorf("symbol anchor: unsupported lang %q", lang)
	}
	return regexp.MustCompile(fmt.Sprintf(tmpl, regexp.QuoteMeta(name))), nil
}
