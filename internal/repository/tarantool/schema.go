package tarantool

import (
	"context"

	"github.com/pkg/errors"
	"github.com/tarantool/go-tarantool/v2"
)

// schema creates the spaces used by ttadapter. Every statement is idempotent.
const schema = `
local polls = box.schema.space.create('polls', {
    if_not_exists = true,
    format = {
        {name = 'poll_id', type = 'string'},
        {name = 'number_of_options', type = 'unsigned'},
        {name = 'poll_start_timestamp', type = 'unsigned'},
        {name = 'poll_end_timestamp', type = 'unsigned'},
    },
})
polls:create_index('primary', {parts = {'poll_id'}, if_not_exists = true})

local votes = box.schema.space.create('votes', {
    if_not_exists = true,
    format = {
        {name = 'poll_id', type = 'string'},
        {name = 'voter', type = 'string'},
        {name = 'voting_option', type = 'unsigned'},
        {name = 'number_of_votes', type = 'integer'},
        {name = 'withdrawn', type = 'boolean'},
    },
})
votes:create_index('primary', {parts = {'poll_id', 'voter'}, if_not_exists = true})

local events = box.schema.space.create('events', {
    if_not_exists = true,
    format = {
        {name = 'id', type = 'string'},
        {name = 'name', type = 'string'},
        {name = 'topics', type = 'array'},
        {name = 'timestamp', type = 'unsigned'},
        {name = 'payload', type = 'varbinary'},
    },
})
events:create_index('primary', {parts = {'id'}, if_not_exists = true})
events:create_index('timestamp', {parts = {'timestamp'}, unique = false, if_not_exists = true})
`

// Migrate creates the polls, votes and events spaces if they are missing.
func Migrate(ctx context.Context, conn tarantool.Doer) error {
	if _, err := conn.Do(
		tarantool.NewEvalRequest(schema).
			Context(ctx).
			Args([]interface{}{}),
	).Get(); err != nil {
		return errors.Wrap(err, "could not apply tarantool schema")
	}
	return nil
}
