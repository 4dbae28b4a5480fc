package tenantcmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ribeiromendes5014-design/netfliz/domains/tenants/be/repo"
	"github.com/ribeiromendes5014-design/netfliz/domains/tenants/be/service"
	"github.com/ribeiromendes5014-design/netfliz/platform/go/persistence"
)

// Command groups tenant-related helpers.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenant",
		Short: "Tenant utilities (create/list)",
	}

	cmd.AddCommand(createCommand())
	cmd.AddCommand(listCommand())
	return cmd
}

func createCommand() *cobra.Command {
	var (
		databaseURL  string
		tenantName   string
		tenantSlug   string
		accessKey    string
		accessEndsAt string
	)

	c := &cobra.Command{
		Use:   "create",
		Short: "Create a portal tenant and print its access key",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			var endsAt *time.Time
			if strings.TrimSpace(accessEndsAt) != "" {
				parsed, err := time.Parse(time.RFC3339, accessEndsAt)
				if err != nil {
					return fmt.Errorf("parse --access-ends-at (want RFC 3339, e.g. 2026-12-31T23:59:59Z): %w", err)
				}
				endsAt = &parsed
			}

			pool, err := persistence.NewPool(ctx, persistence.PoolConfig{ConnString: databaseURL})
			if err != nil {
				return fmt.Errorf("init pool: %w", err)
			}
			defer persistence.ClosePool(pool)

			if err := persistence.BootstrapSchema(ctx, pool); err != nil {
				return fmt.Errorf("bootstrap schema: %w", err)
			}

			tenantStore, err := persistence.NewTenantStore(pool)
			if err != nil {
				return fmt.Errorf("init tenant store: %w", err)
			}
			svc := service.New(repo.NewPostgresRepository(tenantStore))

			t, key, err := svc.Create(ctx, service.CreateInput{
				Name:         tenantName,
				Slug:         tenantSlug,
				AccessEndsAt: endsAt,
				AccessKey:    accessKey,
			})
			if err != nil {
				return fmt.Errorf("create tenant: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Tenant created. Slug: %s (%s)\n", t.Slug, t.ID)
			if t.AccessEndsAt != nil {
				fmt.Fprintf(out, "Access ends at: %s\n", t.AccessEndsAt.Format(time.RFC3339))
			}
			// The key is stored hashed; this is the only time it is printed.
			fmt.Fprintf(out, "Access key: %s\n", key)
			return nil
		},
	}

	c.Flags().StringVar(&databaseURL, "database-url", "", "PostgreSQL connection string")
	c.Flags().StringVar(&tenantName, "name", "", "Display name; the slug is derived from it when --slug is omitted")
	c.Flags().StringVar(&tenantSlug, "slug", "", "Explicit slug (fails on conflict instead of deduplicating)")
	c.Flags().StringVar(&accessKey, "access-key", "", "Access key; generated when omitted")
	c.Flags().StringVar(&accessEndsAt, "access-ends-at", "", "Subscription end (RFC 3339); open-ended when omitted")

	_ = c.MarkFlagRequired("database-url")
	_ = c.MarkFlagRequired("name")

	return c
}

func listCommand() *cobra.Command {
	var databaseURL string

	c := &cobra.Command{
		Use:   "list",
		Short: "List active tenants",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			pool, err := persistence.NewPool(ctx, persistence.PoolConfig{ConnString: databaseURL})
			if err != nil {
				return fmt.Errorf("init pool: %w", err)
			}
			defer persistence.ClosePool(pool)

			tenantStore, err := persistence.NewTenantStore(pool)
			if err != nil {
				return fmt.Errorf("init tenant store: %w", err)
			}
			svc := service.New(repo.NewPostgresRepository(tenantStore))

			tenants, err := svc.ListActive(ctx)
			if err != nil {
				return fmt.Errorf("list tenants: %w", err)
			}

			out := cmd.OutOrStdout()
			for _, t := range tenants {
				endsAt := "open-ended"
				if t.AccessEndsAt != nil {
					endsAt = t.AccessEndsAt.Format(time.RFC3339)
				}
				fmt.Fprintf(out, "%s\t%s\taccess ends: %s\n", t.Slug, t.ID, endsAt)
			}
			return nil
		},
	}

	c.Flags().StringVar(&databaseURL, "database-url", "", "PostgreSQL connection string")
	_ = c.MarkFlagRequired("database-url")

	return c
}
