package extract

import (
	"context"

	"github.com/healthfolio/labingest/internal/entity"
)

// ValueExtractor turns report text into raw lab values.
type ValueExtractor interface {
	Extract(ctx context.Context, text string) ([]entity.RawExtractedValue, error)
}
