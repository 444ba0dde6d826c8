package main

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/railzwaylabs/catalogadmin/internal/catalog/domain"
	"github.com/railzwaylabs/catalogadmin/internal/catalog/export"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	var offline bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Reconcile with the API and print the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalog(cmd, consoleConfirmer(cmd, false), func(ctx context.Context, s session) error {
				var (
					products []domain.Product
					err      error
				)
				if offline {
					products, err = s.svc.List(ctx)
				} else {
					products, err = s.svc.Load(ctx)
				}
				if err != nil {
					return err
				}
				renderProducts(s.out, products, s.svc.Variant(), s.cfg.Remote.BaseURL)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "print the cached catalog without contacting the API")
	return cmd
}

func newReloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Merge the API catalog into the cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalog(cmd, consoleConfirmer(cmd, false), func(ctx context.Context, s session) error {
				products, err := s.svc.Load(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(s.out, "%d products cached\n", len(products))
				return nil
			})
		},
	}
}

func newAddCmd() *cobra.Command {
	var (
		req       domain.CreateRequest
		price     string
		imagePath string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Price = domain.Price(strings.TrimSpace(price))
			if imagePath != "" {
				image, err := readImage(imagePath)
				if err != nil {
					return err
				}
				req.Image = image
			}
			return runCatalog(cmd, consoleConfirmer(cmd, false), func(ctx context.Context, s session) error {
				if err := s.svc.Variant().CheckChoices(req.Category, req.Size); err != nil {
					return err
				}
				res, err := s.svc.Create(ctx, req)
				if err != nil {
					return err
				}
				fmt.Fprintf(s.out, "product %d saved (%s)\n", res.Product.ID, res.Outcome)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "product name")
	cmd.Flags().StringVar(&req.Details, "details", "", "product details")
	cmd.Flags().StringVar(&price, "price", "", "product price")
	cmd.Flags().StringVar(&req.Category, "type", "", "product type ("+strings.Join(domain.Categories, "|")+")")
	cmd.Flags().StringVar(&req.Size, "size", "", "product size ("+strings.Join(domain.Sizes, "|")+")")
	cmd.Flags().StringVar(&imagePath, "image", "", "path of the product image to upload")
	return cmd
}

func newEditCmd() *cobra.Command {
	var (
		sets   []string
		cancel bool
	)
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a product and save it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			changes, err := parseAssignments(sets)
			if err != nil {
				return err
			}
			return runCatalog(cmd, consoleConfirmer(cmd, false), func(ctx context.Context, s session) error {
				if _, err := s.svc.BeginEdit(ctx, id); err != nil {
					return err
				}
				for _, ch := range changes {
					if _, err := s.svc.ChangeEdit(ctx, ch[0], ch[1]); err != nil {
						return fmt.Errorf("%s: %w", ch[0], err)
					}
				}
				if cancel {
					fmt.Fprintln(s.out, "edit discarded")
					return s.svc.CancelEdit(ctx)
				}
				res, err := s.svc.SaveEdit(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(s.out, "product %d saved (%s)\n", id, res.Outcome)
				return nil
			})
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field=value to change (repeatable)")
	cmd.Flags().BoolVar(&cancel, "cancel", false, "discard the changes instead of saving")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return runCatalog(cmd, consoleConfirmer(cmd, yes), func(ctx context.Context, s session) error {
				res, err := s.svc.Delete(ctx, id)
				if err != nil {
					return err
				}
				if res.Product == nil {
					fmt.Fprintf(s.out, "product %d was not cached\n", id)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.xlsx>",
		Short: "Write the cached catalog to a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalog(cmd, consoleConfirmer(cmd, false), func(ctx context.Context, s session) error {
				products, err := s.svc.List(ctx)
				if err != nil {
					return err
				}
				f, err := os.Create(args[0])
				if err != nil {
					return err
				}
				if err := export.WriteXLSX(f, products, s.svc.Variant(), s.cfg.Remote.BaseURL); err != nil {
					_ = f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				fmt.Fprintf(s.out, "%d products written to %s\n", len(products), args[0])
				return nil
			})
		},
	}
}

func readImage(path string) (*domain.ImageUpload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return &domain.ImageUpload{
		Filename:    filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Data:        data,
	}, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid product id %q", s)
	}
	return id, nil
}

// parseAssignments splits field=value pairs, keeping their order.
func parseAssignments(sets []string) ([][2]string, error) {
	out := make([][2]string, 0, len(sets))
	for _, set := range sets {
		field, value, ok := strings.Cut(set, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			return nil, fmt.Errorf("invalid --set %q, want field=value", set)
		}
		out = append(out, [2]string{field, value})
	}
	return out, nil
}
