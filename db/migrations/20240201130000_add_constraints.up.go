package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {

		if db.Dialect().Name().String() != "pg" {
			fmt.Printf("\033[1;31m%s\033[0m", "You are not using PostgreSQL. DB level checks can not be enabled!\n")
			return nil
		}
		sql := `
			-- emails are unique by lowercase form
				CREATE UNIQUE INDEX users_email_lower_idx ON users (lower(email));

			-- newest-first listing per owner
				CREATE INDEX invoices_user_created_idx ON invoices (user_id, created_at DESC);

			-- an invoice is in exactly one of two states
				ALTER TABLE invoices
				ADD CONSTRAINT check_invoice_status
				CHECK (status IN ('draft', 'certified'));

			-- the uniqueness backstop for concurrent certify calls:
			-- at most one certification per invoice
				CREATE UNIQUE INDEX certifications_invoice_id_idx ON certifications (invoice_id);
				CREATE INDEX certifications_pdf_hash_idx ON certifications (pdf_hash);

				ALTER TABLE invoices
				ADD CONSTRAINT fk_invoices_user
				FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE;

				ALTER TABLE certifications
				ADD CONSTRAINT fk_certifications_invoice
				FOREIGN KEY (invoice_id) REFERENCES invoices (id) ON DELETE CASCADE;

			-- verification logs are an append-only audit trail and must
			-- survive certification deletion with a nulled reference
				ALTER TABLE verification_logs
				ADD CONSTRAINT fk_verification_logs_certification
				FOREIGN KEY (certification_id) REFERENCES certifications (id) ON DELETE SET NULL;

				ALTER TABLE verification_logs
				ADD CONSTRAINT check_verification_result
				CHECK (result IN ('verified', 'not_found'));
		`
		if _, err := db.Exec(sql); err != nil {
			return err
		}
		return nil
	}, nil)
}
