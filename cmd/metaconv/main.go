// Command metaconv converts digital-document metadata files from the
// legacy RDF format to METS, certifying every conversion through the
// equals, content and token validators.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/archivata/metaconv/core/convert"
	"github.com/archivata/metaconv/core/fileformat"
	"github.com/archivata/metaconv/core/ruleset"
	"github.com/archivata/metaconv/core/validate"
	"github.com/archivata/metaconv/internal/formats/mets"
	"github.com/archivata/metaconv/internal/formats/rdf"
	"github.com/archivata/metaconv/internal/logging"
	"github.com/archivata/metaconv/internal/validation"
)

const version = "0.2.0"

// Platform defaults used when the interactive prompts stay blank.
const (
	defaultBasePath    = "/var/metadata"
	defaultRuleSetPath = "/etc/metaconv/ruleset.xml"
)

// CLI defines the command-line interface for metaconv.
var CLI struct {
	// Global flags
	Verbose bool `name:"verbose" short:"v" help:"Enable debug logging"`
	JSONLog bool `name:"json-log" help:"Emit logs as JSON"`

	Convert  ConvertCmd  `cmd:"" help:"Convert metadata files under a base directory"`
	Validate ValidateCmd `cmd:"" help:"Run the content validator on one metadata file"`
	Ruleset  RulesetGrp  `cmd:"" help:"Rule-set inspection"`
	Version  VersionCmd  `cmd:"" help:"Print version information"`
}

// RulesetGrp contains rule-set inspection operations.
type RulesetGrp struct {
	Show RulesetShowCmd `cmd:"" help:"List struct types, children and cardinalities"`
}

// ConvertCmd walks a directory for meta.xml files and runs the pipeline
// on each. Base and rule-set paths not given as flags are prompted for
// on standard input; blank replies pick the platform defaults.
type ConvertCmd struct {
	Base           string `name:"base" help:"Base directory walked recursively for meta.xml files"`
	Ruleset        string `name:"ruleset" help:"Rule-set XML file"`
	ArchiveBackups bool   `name:"archive-backups" help:"Additionally store xz-compressed backups"`
}

func (c *ConvertCmd) Run() error {
	in := bufio.NewReader(os.Stdin)

	basePath := c.Base
	if basePath == "" {
		basePath = prompt(in, fmt.Sprintf(
			"Base path of the metadata (%s is used when the input stays blank): ", defaultBasePath))
		if basePath == "" {
			basePath = defaultBasePath
		}
	}
	rulesetPath := c.Ruleset
	if rulesetPath == "" {
		rulesetPath = prompt(in, fmt.Sprintf(
			"Path of the rule set (%s is used when the input stays blank): ", defaultRuleSetPath))
		if rulesetPath == "" {
			rulesetPath = defaultRuleSetPath
		}
	}

	if err := validation.ValidateDirectory(basePath); err != nil {
		return fmt.Errorf("invalid base path: %w", err)
	}
	if err := validation.ValidateFile(rulesetPath); err != nil {
		return fmt.Errorf("invalid rule-set path: %w", err)
	}
	basePath, err := validation.Abs(basePath)
	if err != nil {
		return err
	}

	rs, err := ruleset.LoadFile(rulesetPath)
	if err != nil {
		return err
	}
	logging.Info("rule set loaded", "path", rulesetPath)

	driver := &convert.Driver{
		RuleSet:        rs,
		NewSource:      func(rs *ruleset.RuleSet) fileformat.FileFormat { return rdf.New(rs) },
		NewTarget:      func(rs *ruleset.RuleSet) fileformat.FileFormat { return mets.New(rs) },
		ArchiveBackups: c.ArchiveBackups,
	}

	outcomes, err := driver.Run(basePath)
	if err != nil {
		return err
	}

	committed := 0
	for _, o := range outcomes {
		if o.Committed {
			committed++
		}
	}
	// Per-file failures are logged, not turned into a non-zero exit.
	fmt.Printf("%d of %d files committed\n", committed, len(outcomes))
	return nil
}

func prompt(in *bufio.Reader, message string) string {
	fmt.Print(message)
	line, err := in.ReadString('\n')
	if err != nil && err != io.EOF {
		return ""
	}
	return strings.TrimSpace(line)
}

// ValidateCmd runs the content validator on a single metadata file.
type ValidateCmd struct {
	Ruleset string `name:"ruleset" required:"" help:"Rule-set XML file"`
	Format  string `name:"format" default:"mets" enum:"mets,rdf" help:"Input format"`
	Path    string `arg:"" help:"Metadata file to validate" type:"existingfile"`
}

func (c *ValidateCmd) Run() error {
	rs, err := ruleset.LoadFile(c.Ruleset)
	if err != nil {
		return err
	}

	var format fileformat.FileFormat
	if c.Format == "rdf" {
		format = rdf.New(rs)
	} else {
		format = mets.New(rs)
	}
	if err := format.Read(c.Path); err != nil {
		return err
	}

	result := validate.Content(format.Document(), rs, c.Path)
	if result.OK() {
		fmt.Println("valid")
		return nil
	}
	for _, violation := range result.Violations {
		fmt.Println(violation)
	}
	return fmt.Errorf("%d violations", len(result.Violations))
}

// RulesetShowCmd prints the structural types of a rule set with their
// allowed children and metadata cardinalities.
type RulesetShowCmd struct {
	Path string `arg:"" help:"Rule-set XML file" type:"existingfile"`
}

func (c *RulesetShowCmd) Run() error {
	rs, err := ruleset.LoadFile(c.Path)
	if err != nil {
		return err
	}

	for _, structType := range rs.StructTypes() {
		fmt.Printf("%s", structType.Name)
		if structType.AnchorClass != "" {
			fmt.Printf(" (anchor %s)", structType.AnchorClass)
		}
		fmt.Println()
		if children := structType.AllowedChildTypes(); len(children) > 0 {
			fmt.Printf("  children: %s\n", strings.Join(children, ", "))
		}
		for _, mdType := range structType.MetadataTypes() {
			kind := ""
			if mdType.IsPerson {
				kind = " person"
			}
			fmt.Printf("  %s [%s]%s\n", mdType.Name, structType.NumberOfMetadataType(mdType.Name), kind)
		}
		for _, groupType := range structType.MetadataGroupTypes() {
			fmt.Printf("  %s [%s] group\n", groupType.Name, structType.NumberOfMetadataGroupType(groupType.Name))
		}
	}
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("metaconv %s\n", version)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("metaconv"),
		kong.Description("Digital-document metadata conversion with round-trip certification."),
		kong.UsageOnError(),
	)

	level := logging.LevelInfo
	if CLI.Verbose {
		level = logging.LevelDebug
	}
	format := logging.FormatText
	if CLI.JSONLog {
		format = logging.FormatJSON
	}
	logging.InitLogger(level, format)

	ctx.FatalIfErrorf(ctx.Run())
}
