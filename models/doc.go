// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types shared by the
server, the client, and the voting core.

# Scores

A Score is an integer on the closed scale -5..5:

	models.MinScore = -5
	models.MaxScore = 5

Zero is a valid neutral vote. "Not voted yet" is never encoded as zero;
callers track it separately.

A VoteMap maps item ids to one voter's committed scores. It may cover only
part of the catalog.

# Request Types

  - SubmitVotesRequest: user_id, votes ([]VoteIn{item_id, score})

# Response Types

  - ItemCreatedResponse: id
  - SubmitVotesResponse: submission_id, vote_count, message
  - TopicResponse: title
  - ErrorResponse: error, message

# Domain Types

  - ItemMeta: catalog entry (id, description)
  - Item: catalog entry plus image bytes and MIME type
  - ResultRow: aggregated statistics for one item
  - VoteDistribution: per-score histogram for one item
*/
package models
