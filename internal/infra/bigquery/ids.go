package bigquery

import "fmt"

// insertWithNextID wraps an INSERT in a script that first allocates the next id
// for entity from the id_sequences table. The insert may reference the
// allocated id as new_id. The script's result is a single row with column id.
//
// Sequences only move forward, so ids stay unique after deletes.
func (s *Store) insertWithNextID(entity, insert string) string {
	seq := s.table(sequencesTable)
	return fmt.Sprintf(`
		DECLARE new_id INT64;
		BEGIN TRANSACTION;
		SET new_id = (SELECT last_id + 1 FROM %[1]s WHERE entity = '%[2]s');
		IF new_id IS NULL THEN
			SET new_id = 1;
			INSERT INTO %[1]s (entity, last_id) VALUES ('%[2]s', new_id);
		ELSE
			UPDATE %[1]s SET last_id = new_id WHERE entity = '%[2]s';
		END IF;
		%[3]s;
		COMMIT TRANSACTION;
		SELECT new_id AS id;
	`, seq, entity, insert)
}

type idRow struct {
	ID int64 `bigquery:"id"`
}
