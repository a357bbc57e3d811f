package cli

import (
	"text/tabwriter"

	"github.com/spf13/cobra"

	"gitlab.com/yelinaung/invoicekit/internal/models"
	"gitlab.com/yelinaung/invoicekit/internal/store"
)

func newClientCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Manage clients",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List clients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			clients := app.Store.LoadClients(cmd.Context())
			return app.emit(clients, func(w *tabwriter.Writer) {
				row(w, "ID", "NAME", "EMAIL", "COMPANY", "PHONE")
				for _, c := range clients {
					row(w, c.ID, c.Name, c.Email, orDash(c.Company), orDash(c.Phone))
				}
			})
		},
	}

	var c models.Client
	save := &cobra.Command{
		Use:   "save",
		Short: "Create a client, or replace the client with --id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			saved, err := app.Store.SaveClient(cmd.Context(), c)
			if err != nil {
				return err
			}
			return app.emit(saved, func(w *tabwriter.Writer) {
				row(w, "Saved client", saved.ID, saved.Name)
			})
		},
	}
	save.Flags().StringVar(&c.ID, "id", "", "Existing client id to replace")
	save.Flags().StringVar(&c.Name, "name", "", "Client name")
	save.Flags().StringVar(&c.Email, "email", "", "Email address")
	save.Flags().StringVar(&c.Phone, "phone", "", "Phone number")
	save.Flags().StringVar(&c.Address, "address", "", "Postal address")
	save.Flags().StringVar(&c.Company, "company", "", "Company name")

	cmd.AddCommand(list, save)
	return cmd
}

func newItemCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Manage the service catalog",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List catalog items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items := app.Store.LoadItems(cmd.Context())
			return app.emit(items, func(w *tabwriter.Writer) {
				row(w, "ID", "NAME", "PRICE", "DESCRIPTION")
				for _, it := range items {
					row(w, it.ID, it.Name, money(it.Price), orDash(it.Description))
				}
			})
		},
	}

	var name, description, price string

	add := &cobra.Command{
		Use:   "add",
		Short: "Add a catalog item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			item := models.Item{Name: name, Description: description}
			p, err := parseMoney("price", price)
			if err != nil {
				return err
			}
			item.Price = p
			saved, err := app.Store.AddItem(cmd.Context(), item)
			if err != nil {
				return err
			}
			return app.emit(saved, func(w *tabwriter.Writer) {
				row(w, "Added item", saved.ID, saved.Name, money(saved.Price))
			})
		},
	}
	add.Flags().StringVar(&name, "name", "", "Item name")
	add.Flags().StringVar(&description, "description", "", "Item description")
	add.Flags().StringVar(&price, "price", "0", "Unit price")

	var patchName, patchDescription, patchPrice string
	update := &cobra.Command{
		Use:   "update <item-id>",
		Short: "Change the fields given as flags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch store.ItemPatch
			flags := cmd.Flags()
			if flags.Changed("name") {
				patch.Name = &patchName
			}
			if flags.Changed("description") {
				patch.Description = &patchDescription
			}
			if flags.Changed("price") {
				p, err := parseMoney("price", patchPrice)
				if err != nil {
					return err
				}
				patch.Price = &p
			}
			saved, err := app.Store.UpdateItem(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			return app.emit(saved, func(w *tabwriter.Writer) {
				row(w, "Updated item", saved.ID, saved.Name, money(saved.Price))
			})
		},
	}
	update.Flags().StringVar(&patchName, "name", "", "Item name")
	update.Flags().StringVar(&patchDescription, "description", "", "Item description")
	update.Flags().StringVar(&patchPrice, "price", "", "Unit price")

	del := &cobra.Command{
		Use:   "delete <item-id>",
		Short: "Remove a catalog item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Store.DeleteItem(cmd.Context(), args[0]); err != nil {
				return err
			}
			app.printf("Deleted item %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, add, update, del)
	return cmd
}
