package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/garrettladley/marine/internal/client/marine"
	"github.com/garrettladley/marine/internal/render"
)

func mapCmd(a *app) *cobra.Command {
	var (
		lat, lng   float64
		radius     float64
		cols, rows int
	)
	cmd := &cobra.Command{
		Use:   "map",
		Short: "Plot nearby sightings and curated records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q := &marine.MapQuery{RadiusKm: radius}
			if cmd.Flags().Changed("lat") {
				q.Latitude = &lat
				q.Longitude = &lng
			}

			return a.withSession(cmd, func(ctx context.Context, s *session) error {
				var (
					profile  *marine.Profile
					features *marine.FeatureCollection
				)
				g, ctx := errgroup.WithContext(ctx)
				g.Go(func() error {
					p, err := s.client.Auth.Me(ctx)
					profile = p
					return err
				})
				g.Go(func() error {
					fc, err := s.client.Map.Observations(ctx, q)
					features = fc
					return err
				})
				if err := g.Wait(); err != nil {
					return err
				}

				_, _ = fmt.Fprintln(a.stdout, render.Profile(profile))
				_, _ = fmt.Fprintln(a.stdout, render.Map(features.Markers(), cols, rows))
				return nil
			})
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "centre latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "centre longitude")
	cmd.Flags().Float64Var(&radius, "radius", 0, "search radius in km (server default 50)")
	cmd.Flags().IntVar(&cols, "cols", render.DefaultMapCols, "map width in characters")
	cmd.Flags().IntVar(&rows, "rows", render.DefaultMapRows, "map height in characters")
	cmd.MarkFlagsRequiredTogether("lat", "lng")
	return cmd
}
