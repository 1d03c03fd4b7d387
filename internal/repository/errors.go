package repository

import "errors"

var ErrNoCampaigns = errors.New("no campaign ids given")
