package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// RunRecord describes one landscape exploration run: the landscape it was
// built from and how it was searched.
type RunRecord struct {
	VersionedRecord
	ID           string `json:"id"`
	N            int    `json:"n"`
	K            int    `json:"k"`
	Wiring       string `json:"wiring"`
	Alphabet     []int  `json:"alphabet"`
	Seed         int64  `json:"seed"`
	WalkLength   int    `json:"walk_length"`
	Changes      int    `json:"changes"`
	Samples      int    `json:"samples"`
	Ranker       string `json:"ranker"`
	RankIndex    int    `json:"rank_index"`
	CreatedAtUTC string `json:"created_at_utc"`
}

// WalkStep is one state visited by a mutant walk.
type WalkStep struct {
	VersionedRecord
	Step     int   `json:"step"`
	State    []int `json:"state"`
	Scores   []int `json:"scores"`
	Fitness  int   `json:"fitness"`
	Distance int   `json:"distance"`
}

// RankedState is a sampled state with its position after ranking and the
// criterion score it was ranked by.
type RankedState struct {
	VersionedRecord
	Rank  int   `json:"rank"`
	State []int `json:"state"`
	Score int   `json:"score"`
}

// WalkDiagnostics summarizes a walk's fitness trajectory.
type WalkDiagnostics struct {
	Steps          int     `json:"steps"`
	InitialFitness int     `json:"initial_fitness"`
	FinalFitness   int     `json:"final_fitness"`
	BestFitness    int     `json:"best_fitness"`
	BestStep       int     `json:"best_step"`
	MinFitness     int     `json:"min_fitness"`
	MeanFitness    float64 `json:"mean_fitness"`
	StdFitness     float64 `json:"std_fitness"`
	Improvements   int     `json:"improvements"`
	MaxDistance    int     `json:"max_distance"`
	DistinctStates int     `json:"distinct_states"`
}
