package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/garrettladley/marine/internal/client/marine"
	"github.com/garrettladley/marine/internal/render"
)

const maxConcurrentDeletes = 4

func observationsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "observations",
		Aliases: []string{"obs"},
		Short:   "Manage your observations",
	}
	cmd.AddCommand(
		listObservationsCmd(a),
		createObservationCmd(a),
		updateObservationCmd(a),
		deleteObservationsCmd(a),
	)
	return cmd
}

func listObservationsCmd(a *app) *cobra.Command {
	var (
		status string
		params marine.ListParams
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your observations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var want marine.ValidationStatus
			if status != "" {
				s, err := marine.ParseValidationStatus(status)
				if err != nil {
					return err
				}
				want = s
			}

			return a.withSession(cmd, func(ctx context.Context, s *session) error {
				var (
					observations []marine.Observation
					more         bool
				)
				if params.Page > 0 {
					page, err := s.client.Observations.List(ctx, &params)
					if err != nil {
						return err
					}
					observations, more = page.Results, page.HasMore()
				} else {
					all, err := s.client.Observations.ListAll(ctx)
					if err != nil {
						return err
					}
					observations = all
				}

				observations = marine.FilterByStatus(observations, want)
				marine.SortNewestFirst(observations)

				_, _ = fmt.Fprintln(a.stdout, render.Observations(observations))
				if more {
					_, _ = fmt.Fprintf(a.stdout, "more results: --page %d\n", params.Page+1)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "pending, validated or rejected")
	cmd.Flags().IntVar(&params.Page, "page", 0, "fetch a single page instead of every page")
	cmd.Flags().IntVar(&params.PageSize, "page-size", 0, "results per page")
	return cmd
}

// observationFlags are the fields shared by create and update.
type observationFlags struct {
	species      string
	commonName   string
	latitude     float64
	longitude    float64
	locationName string
	observed     string
	depthMin     float64
	depthMax     float64
	bathymetry   float64
	temperature  float64
	visibility   float64
	notes        string
	sex          string
}

func (f *observationFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.species, "species", "", "scientific species name")
	fs.StringVar(&f.commonName, "common-name", "", "common name")
	fs.Float64Var(&f.latitude, "lat", 0, "latitude in degrees")
	fs.Float64Var(&f.longitude, "lng", 0, "longitude in degrees")
	fs.StringVar(&f.locationName, "location", "", "location name")
	fs.StringVar(&f.observed, "observed", "", "observation time, RFC 3339 (default now)")
	fs.Float64Var(&f.depthMin, "depth-min", 0, "minimum depth in metres")
	fs.Float64Var(&f.depthMax, "depth-max", 0, "maximum depth in metres")
	fs.Float64Var(&f.bathymetry, "bathymetry", 0, "sea floor depth in metres")
	fs.Float64Var(&f.temperature, "temperature", 0, "water temperature in °C")
	fs.Float64Var(&f.visibility, "visibility", 0, "visibility in metres")
	fs.StringVar(&f.notes, "notes", "", "free-form notes")
	fs.StringVar(&f.sex, "sex", "", "male, female or unknown")
}

func (f *observationFlags) observedAt() (time.Time, error) {
	if f.observed == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, f.observed)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --observed: %w", err)
	}
	return t, nil
}

func setIf[T any](fs *pflag.FlagSet, name string, v T) *T {
	if !fs.Changed(name) {
		return nil
	}
	return &v
}

func (f *observationFlags) input(fs *pflag.FlagSet) (marine.ObservationInput, error) {
	observed, err := f.observedAt()
	if err != nil {
		return marine.ObservationInput{}, err
	}
	return marine.ObservationInput{
		SpeciesName:         f.species,
		CommonName:          setIf(fs, "common-name", f.commonName),
		Latitude:            f.latitude,
		Longitude:           f.longitude,
		ObservationDatetime: observed,
		LocationName:        f.locationName,
		DepthMin:            setIf(fs, "depth-min", f.depthMin),
		DepthMax:            setIf(fs, "depth-max", f.depthMax),
		Bathymetry:          setIf(fs, "bathymetry", f.bathymetry),
		Temperature:         setIf(fs, "temperature", f.temperature),
		Visibility:          setIf(fs, "visibility", f.visibility),
		Notes:               setIf(fs, "notes", f.notes),
		Sex:                 setIf(fs, "sex", marine.Sex(f.sex)),
	}, nil
}

func (f *observationFlags) patch(fs *pflag.FlagSet) (marine.ObservationPatch, error) {
	p := marine.ObservationPatch{
		SpeciesName:  setIf(fs, "species", f.species),
		CommonName:   setIf(fs, "common-name", f.commonName),
		Latitude:     setIf(fs, "lat", f.latitude),
		Longitude:    setIf(fs, "lng", f.longitude),
		LocationName: setIf(fs, "location", f.locationName),
		DepthMin:     setIf(fs, "depth-min", f.depthMin),
		DepthMax:     setIf(fs, "depth-max", f.depthMax),
		Bathymetry:   setIf(fs, "bathymetry", f.bathymetry),
		Temperature:  setIf(fs, "temperature", f.temperature),
		Visibility:   setIf(fs, "visibility", f.visibility),
		Notes:        setIf(fs, "notes", f.notes),
		Sex:          setIf(fs, "sex", marine.Sex(f.sex)),
	}
	if fs.Changed("observed") {
		observed, err := f.observedAt()
		if err != nil {
			return marine.ObservationPatch{}, err
		}
		p.ObservationDatetime = &observed
	}
	return p, nil
}

func createObservationCmd(a *app) *cobra.Command {
	var f observationFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Log a sighting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := f.input(cmd.Flags())
			if err != nil {
				return err
			}
			return a.withSession(cmd, func(ctx context.Context, s *session) error {
				obs, err := s.client.Observations.Create(ctx, in)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(a.stdout, render.Observations([]marine.Observation{*obs}))
				return nil
			})
		},
	}
	f.register(cmd.Flags())
	_ = cmd.MarkFlagRequired("species")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lng")
	_ = cmd.MarkFlagRequired("location")
	return cmd
}

func updateObservationCmd(a *app) *cobra.Command {
	var f observationFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a sighting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			patch, err := f.patch(cmd.Flags())
			if err != nil {
				return err
			}
			return a.withSession(cmd, func(ctx context.Context, s *session) error {
				obs, err := s.client.Observations.Update(ctx, id, patch)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(a.stdout, render.Observations([]marine.Observation{*obs}))
				return nil
			})
		},
	}
	f.register(cmd.Flags())
	cmd.MarkFlagsRequiredTogether("lat", "lng")
	return cmd
}

func deleteObservationsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete sightings",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int64, 0, len(args))
			for _, arg := range args {
				id, err := parseID(arg)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}

			return a.withSession(cmd, func(ctx context.Context, s *session) error {
				g, ctx := errgroup.WithContext(ctx)
				g.SetLimit(maxConcurrentDeletes)
				for _, id := range ids {
					g.Go(func() error {
						if err := s.client.Observations.Delete(ctx, id); err != nil {
							return fmt.Errorf("deleting observation %d: %w", id, err)
						}
						return nil
					})
				}
				if err := g.Wait(); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(a.stdout, "Deleted %d observation(s)\n", len(ids))
				return nil
			})
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid observation id %q", s)
	}
	return id, nil
}
