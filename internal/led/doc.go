// Package led opens the buses a panel.Panel writes to: a periph.io SPI port
// clocked at three times the strip's native rate, a terminal preview used
// when no port is present, and periph's nrzled driver as a reference.
package led
