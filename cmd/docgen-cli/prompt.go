package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/goliatone/go-docgen/pkg/block"
	"github.com/goliatone/go-docgen/pkg/fieldcfg"
	"github.com/goliatone/go-docgen/pkg/imaging"
)

const (
	actionAddText  = "Adicionar bloco de texto"
	actionAddImage = "Adicionar imagem"
	actionFinish   = "Concluir campo"
)

// promptValues walks the field definitions in order and asks for each value
// on the terminal. Saved draft values are offered as defaults.
func promptValues(ctx context.Context, fields []fieldcfg.Field, defaults map[string]any) (map[string]any, error) {
	values := make(map[string]any, len(fields))
	for _, field := range fields {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var (
			value any
			err   error
		)
		switch {
		case field.IsBlockField():
			value, err = promptBlocks(ctx, field)
		case field.Type == fieldcfg.TypeSelect:
			value, err = promptSelect(field, defaults[field.Name])
		case field.Type == fieldcfg.TypeTextarea:
			value, err = promptMultiline(field, defaults[field.Name])
		default:
			value, err = promptInput(field, defaults[field.Name])
		}
		if err != nil {
			return nil, translatePromptErr(err)
		}
		values[field.Name] = value
	}
	return values, nil
}

func promptInput(field fieldcfg.Field, fallback any) (string, error) {
	var out string
	prompt := &survey.Input{
		Message: promptMessage(field),
		Default: stringDefault(fallback),
		Help:    field.Placeholder,
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		return "", err
	}
	return out, nil
}

func promptMultiline(field fieldcfg.Field, fallback any) (string, error) {
	var out string
	prompt := &survey.Multiline{
		Message: promptMessage(field),
		Default: stringDefault(fallback),
		Help:    field.Placeholder,
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		return "", err
	}
	return out, nil
}

func promptSelect(field fieldcfg.Field, fallback any) (string, error) {
	if len(field.Options) == 0 {
		return promptInput(field, fallback)
	}

	labels := make([]string, 0, len(field.Options))
	byLabel := make(map[string]string, len(field.Options))
	defaultLabel := ""
	for _, opt := range field.Options {
		labels = append(labels, opt.Label)
		byLabel[opt.Label] = opt.Value
		if opt.Value == stringDefault(fallback) {
			defaultLabel = opt.Label
		}
	}

	prompt := &survey.Select{
		Message: promptMessage(field),
		Options: labels,
	}
	if defaultLabel != "" {
		prompt.Default = defaultLabel
	}

	var picked string
	if err := survey.AskOne(prompt, &picked); err != nil {
		return "", err
	}
	return byLabel[picked], nil
}

func promptBlocks(ctx context.Context, field fieldcfg.Field) ([]block.Block, error) {
	actions, kinds := blockActions(field)
	blocks := []block.Block{}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var action string
		prompt := &survey.Select{
			Message: fmt.Sprintf("%s (%d bloco(s))", promptMessage(field), len(blocks)),
			Options: actions,
		}
		if err := survey.AskOne(prompt, &action); err != nil {
			return nil, err
		}

		switch kinds[action] {
		case block.KindText:
			var text string
			if err := survey.AskOne(&survey.Multiline{Message: "Texto do bloco"}, &text); err != nil {
				return nil, err
			}
			blocks = append(blocks, block.NewText(text))
		case block.KindImage:
			added, err := promptImageBlock()
			if err != nil {
				if errors.Is(err, imaging.ErrRead) || errors.Is(err, imaging.ErrDecode) {
					fmt.Println("Imagem inválida:", err)
					continue
				}
				return nil, err
			}
			blocks = append(blocks, added)
		default:
			return blocks, nil
		}
	}
}

func promptImageBlock() (block.Block, error) {
	var path string
	if err := survey.AskOne(&survey.Input{Message: "Caminho da imagem"}, &path); err != nil {
		return block.Block{}, err
	}

	encoded, err := imaging.ReadFile(strings.TrimSpace(path))
	if err != nil {
		return block.Block{}, err
	}
	canonical, err := imaging.ToCanonicalPNG(encoded)
	if err != nil {
		return block.Block{}, err
	}

	name := imaging.DeriveOutputName(filepath.Base(path))
	return block.NewImage(canonical, name), nil
}

func blockActions(field fieldcfg.Field) ([]string, map[string]block.Kind) {
	actions := []string{}
	kinds := map[string]block.Kind{}
	for _, kind := range field.EffectiveAllowedTypes() {
		switch kind {
		case block.KindText:
			label := field.AddTextLabel
			if label == "" {
				label = actionAddText
			}
			actions = append(actions, label)
			kinds[label] = block.KindText
		case block.KindImage:
			label := field.AddImageLabel
			if label == "" {
				label = actionAddImage
			}
			actions = append(actions, label)
			kinds[label] = block.KindImage
		}
	}
	return append(actions, actionFinish), kinds
}

func promptMessage(field fieldcfg.Field) string {
	label := strings.TrimSpace(field.Label)
	if label == "" {
		label = field.Name
	}
	if field.Required {
		return label + " *"
	}
	return label
}

func stringDefault(value any) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", value)
}

func translatePromptErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return context.Canceled
	}
	return err
}
