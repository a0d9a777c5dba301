package schema

import (
	"fmt"
	"strings"

	"github.com/syssam/qi"
	"github.com/syssam/qi/dialect"
	"github.com/syssam/qi/schema/function"
	"github.com/syssam/qi/schema/index"
)

// Descriptor validation runs first so that the reported error does not
// depend on the dialect. Capability checks follow.

func (q *QueryInterface) checkCreateFunction(desc function.Descriptor) error {
	if err := function.ValidateCreate(desc); err != nil {
		return err
	}
	if err := dialect.Check(q.dialect, dialect.FeatureFunctions); err != nil {
		return err
	}
	if !q.dialect.SupportsLanguage(desc.Language) {
		return qi.NewUnsupportedError(q.dialect.Name(), fmt.Sprintf("language %q", desc.Language))
	}
	for _, p := range desc.Parameters {
		if p.Direction != "" && !strings.EqualFold(p.Direction, function.In) {
			return dialect.Check(q.dialect, dialect.FeatureParameterModes)
		}
	}
	return nil
}

func (q *QueryInterface) checkDropFunction(desc function.DropDescriptor) error {
	if err := function.ValidateDrop(desc); err != nil {
		return err
	}
	return dialect.Check(q.dialect, dialect.FeatureFunctions)
}

func (q *QueryInterface) checkRenameFunction(desc function.RenameDescriptor) error {
	if err := function.ValidateRename(desc); err != nil {
		return err
	}
	return dialect.Check(q.dialect, dialect.FeatureFunctions, dialect.FeatureFunctionRename)
}

func (q *QueryInterface) checkAddIndex(desc index.Descriptor) error {
	if err := index.Validate(desc); err != nil {
		return err
	}
	var features []dialect.Feature
	if desc.Using != "" {
		features = append(features, dialect.FeatureIndexMethod)
	}
	if desc.Where != "" {
		features = append(features, dialect.FeaturePartialIndex)
	}
	if desc.Concurrently {
		features = append(features, dialect.FeatureConcurrentIndex)
	}
	return dialect.Check(q.dialect, features...)
}
