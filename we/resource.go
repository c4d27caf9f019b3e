package we

import (
	"github.com/goccy/go-json"
)

type SnapshotSerializer[S any] func(snapshot *Snapshot[S]) (map[string]any, error)

func StateSerializer[S any](snapshot *Snapshot[S]) (map[string]any, error) {
	serialized, err := json.Marshal(snapshot.State)
	if err != nil {
		return nil, err
	}

	resource := make(map[string]any)
	if err = json.Unmarshal(serialized, &resource); err != nil {
		return nil, err
	}

	return resource, nil
}

// Resource renders a snapshot as its state's fields plus $id, $type and
// $revision.
func Resource[S any](snapshot *Snapshot[S], serialize SnapshotSerializer[S]) (map[string]any, error) {
	if serialize == nil {
		serialize = StateSerializer[S]
	}

	resource, err := serialize(snapshot)
	if err != nil {
		return nil, err
	}

	resource["$id"] = snapshot.Id.Encode()
	resource["$type"] = snapshot.Type
	resource["$revision"] = snapshot.Revision

	return resource, nil
}
