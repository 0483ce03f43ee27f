package resources

import (
	"fmt"
	"path"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// Minify compresses a stylesheet or script. name selects the loader by
// extension; other files are returned unchanged.
func Minify(name string, src []byte) ([]byte, error) {
	var loader api.Loader
	switch path.Ext(name) {
	case ".css":
		loader = api.LoaderCSS
	case ".js":
		loader = api.LoaderJS
	default:
		return src, nil
	}

	result := api.Transform(string(src), api.TransformOptions{
		Loader:            loader,
		Sourcefile:        name,
		MinifyWhitespace:  true,
		MinifySyntax:      true,
		MinifyIdentifiers: loader == api.LoaderJS,
		Target:            api.ES2020,
		LogLevel:          api.LogLevelSilent,
	})

	if len(result.Errors) > 0 {
		var b strings.Builder
		for _, msg := range result.Errors {
			if msg.Location != nil {
				fmt.Fprintf(&b, "%s:%d:%d: %s\n", msg.Location.File, msg.Location.Line, msg.Location.Column, msg.Text)
			} else {
				fmt.Fprintf(&b, "%s\n", msg.Text)
			}
		}
		return nil, fmt.Errorf("esbuild errors:\n%s", b.String())
	}
	return result.Code, nil
}
