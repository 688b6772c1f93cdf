package dataset

import (
	"encoding/json"
	"fmt"

	domds "github.com/kailas-cloud/mapdex/internal/domain/dataset"
	"github.com/kailas-cloud/mapdex/internal/domain/value"
)

// datasetDoc is the stored JSON representation of a dataset.
type datasetDoc struct {
	ID        string      `json:"id"`
	MappingID string      `json:"mapping_id"`
	Name      string      `json:"name"`
	Rows      []value.Row `json:"rows"`
	CreatedAt int64       `json:"created_at"`
	UpdatedAt int64       `json:"updated_at"`
}

func marshalDataset(d domds.Dataset) ([]byte, error) {
	doc := datasetDoc{
		ID:        d.ID(),
		MappingID: d.MappingID(),
		Name:      d.Name(),
		Rows:      d.Rows(),
		CreatedAt: d.CreatedAt(),
		UpdatedAt: d.UpdatedAt(),
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal dataset %s: %w", d.ID(), err)
	}
	return data, nil
}

func unmarshalDataset(data []byte) (domds.Dataset, error) {
	var doc datasetDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return domds.Dataset{}, fmt.Errorf("unmarshal dataset: %w", err)
	}
	if doc.Rows == nil {
		doc.Rows = []value.Row{}
	}
	return domds.Reconstruct(doc.ID, doc.MappingID, doc.Name, doc.Rows, doc.CreatedAt, doc.UpdatedAt), nil
}
