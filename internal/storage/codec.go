package storage

import (
	"encoding/json"
	"errors"

	"nklab/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

// CurrentVersion is the version stamp for newly written records.
func CurrentVersion() model.VersionedRecord {
	return model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion}
}

func EncodeRun(r model.RunRecord) ([]byte, error) {
	return json.Marshal(r)
}

func DecodeRun(data []byte) (model.RunRecord, error) {
	var run model.RunRecord
	if err := json.Unmarshal(data, &run); err != nil {
		return model.RunRecord{}, err
	}
	if err := checkVersion(run.VersionedRecord); err != nil {
		return model.RunRecord{}, err
	}
	return run, nil
}

func EncodeWalk(steps []model.WalkStep) ([]byte, error) {
	return json.Marshal(steps)
}

func DecodeWalk(data []byte) ([]model.WalkStep, error) {
	var steps []model.WalkStep
	if err := json.Unmarshal(data, &steps); err != nil {
		return nil, err
	}
	for _, step := range steps {
		if err := checkVersion(step.VersionedRecord); err != nil {
			return nil, err
		}
	}
	return steps, nil
}

func EncodeRanking(ranking []model.RankedState) ([]byte, error) {
	return json.Marshal(ranking)
}

func DecodeRanking(data []byte) ([]model.RankedState, error) {
	var ranking []model.RankedState
	if err := json.Unmarshal(data, &ranking); err != nil {
		return nil, err
	}
	for _, ranked := range ranking {
		if err := checkVersion(ranked.VersionedRecord); err != nil {
			return nil, err
		}
	}
	return ranking, nil
}

func EncodeFitnessHistory(history []int) ([]byte, error) {
	return json.Marshal(history)
}

func DecodeFitnessHistory(data []byte) ([]int, error) {
	var history []int
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
