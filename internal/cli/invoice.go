package cli

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"gitlab.com/yelinaung/invoicekit/internal/analytics"
	"gitlab.com/yelinaung/invoicekit/internal/models"
)

func newInvoiceCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoice",
		Short: "Create, list and update invoices",
	}
	cmd.AddCommand(
		newInvoiceListCommand(app),
		newInvoiceShowCommand(app),
		newInvoiceCreateCommand(app),
		newInvoiceStatusCommand(app),
		newInvoiceDeleteCommand(app),
		newInvoiceNextNumberCommand(app),
		newInvoiceAttachCommand(app),
		newInvoiceDetachCommand(app),
	)
	return cmd
}

func newInvoiceListCommand(app *App) *cobra.Command {
	var status, query string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List invoices, optionally filtered by status and search text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			invoices := app.Store.FilteredInvoices(cmd.Context(), analytics.InvoiceFilter{
				Status: models.InvoiceStatus(status),
				Query:  query,
			})
			return app.emit(invoices, func(w *tabwriter.Writer) {
				row(w, "ID", "NUMBER", "CLIENT", "STATUS", "ISSUED", "DUE", "TOTAL")
				for _, inv := range invoices {
					row(w, inv.ID, inv.InvoiceNumber, orDash(inv.Client.Name), string(inv.Status),
						day(inv.IssueDate), day(inv.DueDate), money(inv.Total))
				}
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", string(analytics.StatusAll), "Status filter: all, draft, sent, paid or overdue")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Match invoice number, client name or company")
	return cmd
}

func newInvoiceShowCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <invoice-id>",
		Short: "Show one invoice with its lines and attachments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := app.Store.Invoice(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return app.emit(inv, func(w *tabwriter.Writer) {
				row(w, "Invoice", inv.InvoiceNumber)
				row(w, "Status", string(inv.Status))
				row(w, "Client", orDash(inv.Client.Name))
				row(w, "Issued", day(inv.IssueDate))
				row(w, "Due", day(inv.DueDate))
				row(w, "", "")
				row(w, "DESCRIPTION", "QTY", "RATE", "AMOUNT")
				for _, li := range inv.Items {
					row(w, li.Description, li.Quantity.String(), money(li.Rate), money(li.Amount))
				}
				row(w, "", "", "Subtotal", money(inv.Subtotal))
				row(w, "", "", fmt.Sprintf("Tax (%s%%)", inv.TaxRate), money(inv.Tax))
				row(w, "", "", "Total", money(inv.Total))
				if len(inv.Attachments) > 0 {
					row(w, "", "")
					row(w, "ATTACHMENT", "NAME", "TYPE", "SIZE")
					for _, a := range inv.Attachments {
						row(w, a.ID, a.Name, orDash(a.Type), strconv.FormatInt(a.Size, 10))
					}
				}
			})
		},
	}
}

func newInvoiceCreateCommand(app *App) *cobra.Command {
	var (
		clientID string
		items    []string
		lines    []string
		taxRate  string
		notes    string
		status   string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an invoice for a client",
		Example: `  # Two hours of consultation from the catalog plus a custom line
  invoicekit invoice create --client client-1 --item <item-id>:2 --line "Travel:1:45.50"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			client, err := app.Store.ClientByID(ctx, clientID)
			if err != nil {
				return err
			}

			var invoiceLines []models.InvoiceItem
			for _, arg := range items {
				itemID, qty, err := parseItemRef(arg)
				if err != nil {
					return err
				}
				li, err := app.Store.InvoiceItemFromCatalog(ctx, itemID, qty)
				if err != nil {
					return err
				}
				invoiceLines = append(invoiceLines, li)
			}
			for _, arg := range lines {
				li, err := parseLine(arg)
				if err != nil {
					return err
				}
				invoiceLines = append(invoiceLines, li)
			}

			draft := app.Store.NewInvoiceDraft(ctx, client, invoiceLines)
			draft.Notes = notes
			draft.Status = models.InvoiceStatus(status)
			if taxRate != "" {
				rate, err := parseMoney("tax-rate", taxRate)
				if err != nil {
					return err
				}
				draft.TaxRate = rate
			}

			saved, err := app.Store.SaveInvoice(ctx, draft)
			if err != nil {
				return err
			}
			return app.emit(saved, func(w *tabwriter.Writer) {
				row(w, "Created", saved.InvoiceNumber, saved.ID)
				row(w, "Total", money(saved.Total))
			})
		},
	}
	cmd.Flags().StringVar(&clientID, "client", "", "Client id")
	cmd.Flags().StringArrayVar(&items, "item", nil, "Catalog line as <item-id>[:quantity] (repeatable)")
	cmd.Flags().StringArrayVar(&lines, "line", nil, "Custom line as <description>:<quantity>:<rate> (repeatable)")
	cmd.Flags().StringVar(&taxRate, "tax-rate", "", "Tax percentage (default from DEFAULT_TAX_RATE)")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form notes")
	cmd.Flags().StringVar(&status, "status", string(models.InvoiceStatusDraft), "Initial status")
	_ = cmd.MarkFlagRequired("client")
	return cmd
}

// parseItemRef splits "<id>[:qty]". The quantity defaults to 1.
func parseItemRef(arg string) (string, decimal.Decimal, error) {
	id, qtyStr, found := strings.Cut(arg, ":")
	id = strings.TrimSpace(id)
	if id == "" {
		return "", decimal.Zero, fmt.Errorf("invalid --item %q: missing item id", arg)
	}
	if !found {
		return id, decimal.NewFromInt(1), nil
	}
	qty, err := decimal.NewFromString(strings.TrimSpace(qtyStr))
	if err != nil || !qty.IsPositive() {
		return "", decimal.Zero, fmt.Errorf("invalid --item %q: quantity must be a positive number", arg)
	}
	return id, qty, nil
}

// parseLine splits "<description>:<qty>:<rate>" from the right so the
// description may itself contain colons.
func parseLine(arg string) (models.InvoiceItem, error) {
	rest, rateStr, ok := cutLast(arg, ":")
	if !ok {
		return models.InvoiceItem{}, fmt.Errorf("invalid --line %q: want <description>:<quantity>:<rate>", arg)
	}
	desc, qtyStr, ok := cutLast(rest, ":")
	if !ok || strings.TrimSpace(desc) == "" {
		return models.InvoiceItem{}, fmt.Errorf("invalid --line %q: want <description>:<quantity>:<rate>", arg)
	}
	qty, err := decimal.NewFromString(strings.TrimSpace(qtyStr))
	if err != nil {
		return models.InvoiceItem{}, fmt.Errorf("invalid --line %q: bad quantity: %w", arg, err)
	}
	rate, err := parseMoney("line", rateStr)
	if err != nil {
		return models.InvoiceItem{}, err
	}
	return models.NewInvoiceItem("", strings.TrimSpace(desc), qty, rate), nil
}

func cutLast(s, sep string) (string, string, bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}

func newInvoiceStatusCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status <invoice-id> <draft|sent|paid|overdue>",
		Short: "Move an invoice to another status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := app.Store.UpdateInvoiceStatus(cmd.Context(), args[0], models.InvoiceStatus(args[1]))
			if err != nil {
				return err
			}
			return app.emit(inv, func(w *tabwriter.Writer) {
				row(w, inv.InvoiceNumber, string(inv.Status))
			})
		},
	}
}

func newInvoiceDeleteCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <invoice-id>",
		Short: "Delete an invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Store.DeleteInvoice(cmd.Context(), args[0]); err != nil {
				return err
			}
			app.printf("Deleted invoice %s\n", args[0])
			return nil
		},
	}
}

func newInvoiceNextNumberCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "next-number",
		Short: "Reserve and print the next invoice number",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app.printf("%s\n", app.Store.GetNextInvoiceNumber(cmd.Context()))
			return nil
		},
	}
}

func newInvoiceAttachCommand(app *App) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "attach <invoice-id> <file>",
		Short: "Attach a file reference to an invoice",
		Long: `Records a reference to a local file on the invoice. The file itself is
not copied; the attachment stores its absolute path, type and size.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[1])
			if err != nil {
				return fmt.Errorf("failed to resolve %s: %w", args[1], err)
			}
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("failed to stat attachment: %w", err)
			}
			if info.IsDir() {
				return fmt.Errorf("%s is a directory", path)
			}
			if name == "" {
				name = filepath.Base(path)
			}

			a, err := app.Store.AddAttachment(cmd.Context(), args[0], models.Attachment{
				Name: name,
				URI:  "file://" + filepath.ToSlash(path),
				Type: mime.TypeByExtension(filepath.Ext(path)),
				Size: info.Size(),
			})
			if err != nil {
				return err
			}
			return app.emit(a, func(w *tabwriter.Writer) {
				row(w, "Attached", a.ID, a.Name)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name (default: file name)")
	return cmd
}

func newInvoiceDetachCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "detach <invoice-id> <attachment-id>",
		Short: "Remove an attachment from an invoice",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Store.RemoveAttachment(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			app.printf("Removed attachment %s\n", args[1])
			return nil
		},
	}
}
