package pdftext

import (
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// hasImageContent reports whether the document's leading pages carry image
// XObjects. Combined with zero extractable lines this identifies a scanned,
// image-only PDF, which the pipeline short-circuits instead of running
// heuristics against an empty text layer.
func hasImageContent(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return false
	}

	// The first page decides; scanned documents are images from page one.
	pages := ctx.PageCount
	if pages > 3 {
		pages = 3
	}
	for pageNr := 1; pageNr <= pages; pageNr++ {
		if len(pdfcpu.ImageObjNrs(ctx, pageNr)) > 0 {
			return true
		}
	}
	return false
}
