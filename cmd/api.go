package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/desertthunder/promo/internal/services"
	"github.com/desertthunder/promo/internal/shared"
	"github.com/urfave/cli/v3"
)

// apiPath reads the path argument, adding a leading slash when it is missing.
func apiPath(cmd *cli.Command) (string, error) {
	path := strings.TrimSpace(cmd.StringArg("path"))
	if path == "" {
		return "", fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path, nil
}

// apiBody reads and validates the --data flag.
func apiBody(cmd *cli.Command) ([]byte, error) {
	data := cmd.String("data")
	if data == "" {
		return nil, fmt.Errorf("%w: --data flag is required", shared.ErrMissingArgument)
	}

	var jsonTest any
	if err := json.Unmarshal([]byte(data), &jsonTest); err != nil {
		return nil, fmt.Errorf("%w: data is not valid JSON: %v", shared.ErrInvalidInput, err)
	}
	return []byte(data), nil
}

// APIGet makes a direct GET request
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path, err := apiPath(cmd)
	if err != nil {
		return err
	}

	r.logger.Info("GET request", "path", path)
	resp, err := r.rawAPI(ctx).Get(ctx, path)
	return r.writeResponse(resp, err)
}

// APIPost makes a direct POST request
func (r *Runner) APIPost(ctx context.Context, cmd *cli.Command) error {
	path, err := apiPath(cmd)
	if err != nil {
		return err
	}
	data, err := apiBody(cmd)
	if err != nil {
		return err
	}

	r.logger.Info("POST request", "path", path)
	resp, err := r.rawAPI(ctx).Post(ctx, path, data)
	return r.writeResponse(resp, err)
}

// APIPut makes a direct PUT request
func (r *Runner) APIPut(ctx context.Context, cmd *cli.Command) error {
	path, err := apiPath(cmd)
	if err != nil {
		return err
	}
	data, err := apiBody(cmd)
	if err != nil {
		return err
	}

	r.logger.Info("PUT request", "path", path)
	resp, err := r.rawAPI(ctx).Put(ctx, path, data)
	return r.writeResponse(resp, err)
}

// APIDelete makes a direct DELETE request
func (r *Runner) APIDelete(ctx context.Context, cmd *cli.Command) error {
	path, err := apiPath(cmd)
	if err != nil {
		return err
	}

	r.logger.Info("DELETE request", "path", path)
	resp, err := r.rawAPI(ctx).Delete(ctx, path)
	return r.writeResponse(resp, err)
}

// writeResponse prints a raw response body, re-encoding JSON bodies in the chosen output format.
func (r *Runner) writeResponse(resp *services.APIResponse, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if !resp.OK() {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(resp.Body))
	}

	if len(resp.Body) == 0 {
		return r.writePlain("✓ %d\n", resp.StatusCode)
	}

	if resp.IsJSON {
		if r.format == yamlOutput {
			return r.writeYAML(resp.JSONData)
		}
		return r.writeJSON(resp.JSONData, true)
	}

	r.output.Write(resp.Body)
	r.output.Write([]byte("\n"))
	return nil
}
