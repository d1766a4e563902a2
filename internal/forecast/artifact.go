package forecast

import (
	"encoding/json"
	"fmt"
)

// MarshalArtifact serializes a fitted model for the external artifact store.
// The blob is opaque to callers; only this package interprets it.
func MarshalArtifact(f FittedModel) ([]byte, error) {
	return json.Marshal(f)
}

// UnmarshalArtifact restores a fitted model previously produced by
// MarshalArtifact for the named strategy.
func UnmarshalArtifact(modelName string, blob []byte) (FittedModel, error) {
	var f FittedModel
	switch modelName {
	case "seasonal_trend":
		f = &SeasonalTrendFit{}
	case "ar":
		f = &ARFit{}
	case "boosted_stumps", "boosted_lad":
		f = &BoostFit{}
	case "bagged_ensemble":
		f = &BaggedFit{}
	default:
		return nil, fmt.Errorf("unknown model %q", modelName)
	}
	if err := json.Unmarshal(blob, f); err != nil {
		return nil, fmt.Errorf("decode %s artifact: %w", modelName, err)
	}
	return f, nil
}
