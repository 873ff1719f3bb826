// Package convert runs the per-file conversion pipeline: back up the
// input, read it through the source format, certify the shared document,
// write the target format, reload it, and certify the round trip. Every
// outcome lands on one of the four log channels; a failed stage cancels
// the file and the driver moves on.
package convert

import (
	"github.com/archivata/metaconv/core/fileformat"
	"github.com/archivata/metaconv/core/ruleset"
	"github.com/archivata/metaconv/core/validate"
	"github.com/archivata/metaconv/internal/archive"
	"github.com/archivata/metaconv/internal/fileutil"
	"github.com/archivata/metaconv/internal/logging"
)

// Driver converts every metadata file under a base directory from the
// source format to the target format.
type Driver struct {
	// RuleSet governs both formats and the metadata sort.
	RuleSet *ruleset.RuleSet

	// NewSource builds the adapter the input files are read with.
	NewSource func(rs *ruleset.RuleSet) fileformat.FileFormat

	// NewTarget builds the adapter the output files are written with.
	NewTarget func(rs *ruleset.RuleSet) fileformat.FileFormat

	// ArchiveBackups additionally stores an xz-compressed copy of each
	// backup.
	ArchiveBackups bool
}

// Outcome is the per-file result of one pipeline run.
type Outcome struct {
	// Path is the input file.
	Path string

	// BackupPath is the backup the input was copied to, if the backup
	// stage succeeded.
	BackupPath string

	// Committed reports whether the file passed the full pipeline
	// including the round-trip token comparison.
	Committed bool

	// Stage names the pipeline stage a cancelled file failed in.
	Stage string
}

// Run walks the base directory for metadata files and processes each in
// turn. Per-file failures are logged and do not stop the run.
func (d *Driver) Run(basePath string) ([]Outcome, error) {
	files, err := fileutil.FindMetaFiles(basePath)
	if err != nil {
		return nil, err
	}
	logging.Info("conversion session started", "base", basePath, "files", len(files))

	outcomes := make([]Outcome, 0, len(files))
	for _, file := range files {
		outcomes = append(outcomes, d.ProcessFile(file))
	}

	logging.Info("conversion session finished", "base", basePath, "files", len(files))
	return outcomes, nil
}

// ProcessFile runs the pipeline for one input file.
func (d *Driver) ProcessFile(path string) Outcome {
	outcome := Outcome{Path: path}

	// Stage 1: backup.
	backupPath := fileutil.BackupPath(path)
	if err := fileutil.Copy(path, backupPath); err != nil {
		logging.Rollback(path, "backup failed, processing cancelled", "error", err.Error())
		outcome.Stage = "backup"
		return outcome
	}
	outcome.BackupPath = backupPath
	logging.Save(path, "was copied to "+backupPath)
	if d.ArchiveBackups {
		if archivePath, err := archive.CompressFile(backupPath); err != nil {
			logging.Ugh(path, err, "backup archive failed")
		} else {
			logging.Save(path, "backup archived to "+archivePath)
		}
	}

	// Stage 2: read the source format.
	source := d.NewSource(d.RuleSet)
	if err := source.Read(path); err != nil {
		logging.Rollback(path, "source could not be read, processing cancelled", "error", err.Error())
		logging.Ugh(path, err, "source read failed")
		outcome.Stage = "read"
		return outcome
	}

	// Stage 3: the target format shares the document; sort both sides so
	// the equality relation is order-stable.
	target := d.NewTarget(d.RuleSet)
	target.SetDocument(source.Document())
	source.Document().SortMetadataRecursively(d.RuleSet)
	target.Document().SortMetadataRecursively(d.RuleSet)

	// Stage 4: content validation is advisory.
	if result := validate.Content(target.Document(), d.RuleSet, path); !result.OK() {
		for _, violation := range result.Violations {
			logging.Info(violation)
		}
	}

	// Stage 5: self-check on the shared document.
	if !validate.Equals(source.Document(), target.Document()) {
		logging.Rollback(path, "target document is different, processing cancelled")
		outcome.Stage = "equals"
		return outcome
	}
	logging.Info(path + " digital document is equal")

	// Stage 6: write the target format over the input.
	if err := target.Write(path); err != nil {
		logging.Rollback(path, "target could not be saved, processing cancelled", "error", err.Error())
		logging.Ugh(path, err, "target write failed")
		outcome.Stage = "write"
		return outcome
	}
	logging.Save(path, "was written in target format")

	// Stage 7: reload and re-export through the source format.
	if stage := d.verifyRoundTrip(path, backupPath, source, &outcome); stage != "" {
		outcome.Stage = stage
		return outcome
	}
	return outcome
}

// verifyRoundTrip reloads the written file, writes the comparison
// artifacts, and runs the equals and token validations. Returns the name
// of the failed stage, or "" on commit.
func (d *Driver) verifyRoundTrip(path, backupPath string, source fileformat.FileFormat, outcome *Outcome) string {
	reloaded := d.NewTarget(d.RuleSet)
	if err := reloaded.Read(path); err != nil {
		logging.Rollback(backupPath, "verify failed, target was saved but could not be reloaded", "error", err.Error())
		logging.Ugh(backupPath, err, "target reload failed")
		return "reload"
	}

	// Re-export through the source format for the token comparison.
	backExport := d.NewSource(d.RuleSet)
	backExport.SetDocument(reloaded.Document())
	backExport.Document().SortMetadataRecursively(d.RuleSet)
	source.Document().SortMetadataRecursively(d.RuleSet)

	// The reload check is advisory: declared non-equivalences of the
	// wire formats surface here without cancelling the file.
	if validate.Equals(source.Document(), reloaded.Document()) {
		logging.Commit(path, "was successfully verified by equals validator")
	} else {
		logging.Info(path + " reloaded document differs from the originally loaded document")
	}

	fromTarget := fileutil.SiblingWithSuffix(path, ".fromMets.rdf.xml")
	origExport := fileutil.SiblingWithSuffix(path, ".orig.rdf.xml")
	if err := backExport.Write(fromTarget); err != nil {
		logging.Rollback(path, "comparison artifact could not be written", "error", err.Error())
		return "export"
	}
	if err := source.Write(origExport); err != nil {
		logging.Rollback(path, "comparison artifact could not be written", "error", err.Error())
		return "export"
	}
	logging.Save(path, "comparison artifacts written")

	result, err := validate.Tokens(backupPath, fromTarget)
	if err != nil {
		logging.Rollback(path, "token validation failed to run", "error", err.Error())
		return "tokenize"
	}
	if !result.Equal {
		logging.Rollback(path, "conversion could not satisfy the token validator: "+result.Message)
		return "tokenize"
	}

	logging.Commit(path, "was successfully written and verified by the token validator: "+result.Message)
	outcome.Committed = true
	return ""
}
