// Package notifications persists the parent's notification inbox.
//
// The package defines a Repository interface over models.Notification and a
// SQLite implementation that works on a dbx.DBTX (either *sql.DB or *sql.Tx).
//
// Typical Usage
//
//	repo := notifications.NewSQLiteRepository(db)
//	ok, _ := repo.Insert(ctx, n)
//	list, _ := repo.GetAll(ctx, false)
//	_ = repo.MarkRead(ctx, id)
//	_ = repo.DeleteByID(ctx, id)
package notifications
