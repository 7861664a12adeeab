package domain

import "go.trai.ch/zerr"

var (
	// ErrManifestNotFound is returned when no manifest file is found at any of the
	// fixed candidate paths under the repository root.
	ErrManifestNotFound = zerr.New("manifest not found")

	// ErrManifestParseError is returned when a manifest file exists but cannot be
	// parsed as valid YAML. An artifact that parses but fails validation is
	// reported with the matching artifact sentinel (e.g. ErrEmptyInputs).
	ErrManifestParseError = zerr.New("failed to parse manifest")

	// ErrArtifactNotFound is returned when the requested artifact name is not
	// declared in the manifest.
	ErrArtifactNotFound = zerr.New("artifact not found in manifest")

	// ErrDuplicateArtifactName names the condition of two artifacts sharing a
	// name. The config loader does not return it: a repeated artifact key is
	// rejected by the YAML decoder and reported as ErrManifestParseError.
	ErrDuplicateArtifactName = zerr.New("duplicate artifact name")

	// ErrEmptyInputs is returned when an artifact declares no input paths.
	ErrEmptyInputs = zerr.New("artifact has no inputs")

	// ErrEmptyOutputs is returned when an artifact declares no output paths.
	ErrEmptyOutputs = zerr.New("artifact has no outputs")

	// ErrWildcardInInput is returned when an input path contains the pattern
	// wildcard token.
	ErrWildcardInInput = zerr.New("wildcard token is not permitted in an input path")

	// ErrMultipleWildcardsInPath is returned when a single output path contains
	// the wildcard token more than once.
	ErrMultipleWildcardsInPath = zerr.New("output path contains the wildcard token more than once")

	// ErrGitError wraps any failure surfaced by the Git repository facade:
	// not a repository, missing revision, or a git binary failure.
	ErrGitError = zerr.New("git operation failed")

	// ErrRevisionNotFound is returned when resolve fails to find the given rev-spec.
	ErrRevisionNotFound = zerr.New("revision not found")

	// ErrIncomparable is returned when youngest/oldest is applied to a set that
	// contains two pairwise-incomparable objects.
	ErrIncomparable = zerr.New("objects are incomparable under the ancestry partial order")

	// ErrRequiredObjectUndefined is returned when the required input object for an
	// artifact cannot be computed because at least one input was never committed.
	ErrRequiredObjectUndefined = zerr.New("required input object is undefined: an input was never committed")

	// ErrIoError wraps any filesystem failure during copy, stage, rename, or
	// lockfile handling.
	ErrIoError = zerr.New("filesystem operation failed")

	// ErrLockContention is surfaced only when a non-blocking lock attempt fails;
	// the default locking mode blocks, so this is normally absent.
	ErrLockContention = zerr.New("failed to acquire lock: contention")

	// ErrEntryNotFound is returned by retrieve_entry when no cache entry exists
	// under the requested key.
	ErrEntryNotFound = zerr.New("cache entry not found")

	// ErrUncommittedChanges is returned when an operation's output paths have
	// uncommitted changes in the working tree and the caller has not passed
	// the bypass flag.
	ErrUncommittedChanges = zerr.New("uncommitted changes present in artifact outputs")

	// ErrInvalidPatternArtifact is returned when an output template used for
	// pattern matching contains no wildcard token. Whether the outputs of one
	// pattern artifact agree on their wildcard expansion is not checked.
	ErrInvalidPatternArtifact = zerr.New("invalid pattern artifact")
)
