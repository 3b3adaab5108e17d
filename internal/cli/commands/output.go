package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"traefiker/internal/db"
	"traefiker/internal/service"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Output formats
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

// printer renders command results in the format chosen by --output
type printer struct {
	out    io.Writer
	format string
}

func newPrinter(cmd *cobra.Command) (*printer, error) {
	format, _ := cmd.Flags().GetString("output")
	switch format {
	case "":
		format = OutputTable
	case OutputTable, OutputJSON, OutputYAML:
	default:
		return nil, fmt.Errorf("unknown output format %q (want table, json or yaml)", format)
	}
	return &printer{out: cmd.OutOrStdout(), format: format}, nil
}

// structured writes v as JSON or YAML. It reports false for table output.
//
// YAML goes through JSON first so both formats share the json field names.
func (p *printer) structured(v interface{}) (bool, error) {
	switch p.format {
	case OutputJSON:
		enc := json.NewEncoder(p.out)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case OutputYAML:
		data, err := json.Marshal(v)
		if err != nil {
			return true, err
		}
		var generic interface{}
		if err := json.Unmarshal(data, &generic); err != nil {
			return true, err
		}
		out, err := yaml.Marshal(generic)
		if err != nil {
			return true, err
		}
		_, err = p.out.Write(out)
		return true, err
	}
	return false, nil
}

func (p *printer) records(records []*service.Record) error {
	if ok, err := p.structured(records); ok {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(p.out, "No services found")
		return nil
	}

	w := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSTATUS\tPROJECT\tIMAGE\tHOSTS\tCONTAINER")
	for _, rec := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			rec.Name, rec.Status, rec.Project, imageName(rec), hostList(rec), containerID(rec))
	}
	return w.Flush()
}

func (p *printer) record(rec *service.Record) error {
	if ok, err := p.structured(rec); ok {
		return err
	}

	w := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Name:\t%s\n", rec.Name)
	fmt.Fprintf(w, "Status:\t%s\n", rec.Status)
	fmt.Fprintf(w, "Project:\t%s\n", rec.Project)
	fmt.Fprintf(w, "Image:\t%s\n", imageName(rec))
	fmt.Fprintf(w, "Hosts:\t%s\n", hostList(rec))
	fmt.Fprintf(w, "Container:\t%s\n", containerID(rec))
	if rec.Owner != "" {
		fmt.Fprintf(w, "Owner:\t%s\n", rec.Owner)
	}
	for _, env := range rec.Environment {
		fmt.Fprintf(w, "Env:\t%s=%s\n", env.Key, env.Value)
	}
	for _, r := range rec.Redirects {
		fmt.Fprintf(w, "Redirect:\t%s -> %s\n", r.Regex, r.Replacement)
	}
	return w.Flush()
}

func (p *printer) page(page *db.PaginatedResponse[*service.Record]) error {
	if ok, err := p.structured(page); ok {
		return err
	}
	if err := p.records(page.Data); err != nil {
		return err
	}
	if page.TotalPages > 1 {
		fmt.Fprintf(p.out, "\nPage %d of %d (%d services)\n", page.Page, page.TotalPages, page.TotalItems)
	}
	return nil
}

func (p *printer) projects(projects []*db.Project) error {
	if ok, err := p.structured(projects); ok {
		return err
	}
	if len(projects) == 0 {
		fmt.Fprintln(p.out, "No projects found")
		return nil
	}

	w := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCREATED")
	for _, project := range projects {
		fmt.Fprintf(w, "%s\t%s\n", project.Name, project.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func imageName(rec *service.Record) string {
	if rec.Image == nil {
		return "-"
	}
	return rec.Image.Name
}

func hostList(rec *service.Record) string {
	if len(rec.Hosts) == 0 {
		return "-"
	}
	return strings.Join(rec.Hosts, ",")
}

func containerID(rec *service.Record) string {
	if rec.Container == nil || rec.Container.ContainerID == "" {
		return "-"
	}
	id := rec.Container.ContainerID
	if len(id) > 12 {
		id = id[:12]
	}
	return id
}
